/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015-2019 Samjung Data Service, Inc. All rights reserved.
 *
 *  Kitae Kim <superkkt@sds.co.kr>
 *  Donam Kim <donam.kim@sds.co.kr>
 *  Jooyoung Kang <jooyoung.kang@sds.co.kr>
 *  Changjin Choi <ccj9707@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

// Package topology isolates the host pairs on static slices. Every switch gets the MAC
// and ARP flows of its slices at connection time, and the controller drops the rest.
package topology

import (
	"fmt"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"
	"github.com/vincenzodan/SDN-Network-Slicing/protocol"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("topology")
)

type Topology struct {
	app.BaseProcessor
	table *policy.Table
}

func New(table *policy.Table) *Topology {
	if table == nil {
		panic("nil policy table")
	}

	return &Topology{table: table}
}

func (r *Topology) Name() string {
	return "Topology"
}

func (r *Topology) String() string {
	return fmt.Sprintf("%v", r.Name())
}

func (r *Topology) OnDeviceUp(finder network.Finder, device *network.Device) error {
	if err := r.installSlices(device); err != nil {
		return err
	}

	return r.BaseProcessor.OnDeviceUp(finder, device)
}

func (r *Topology) installSlices(d learning.RuleInstaller) error {
	entry := r.table.Entry(d.ID())
	for _, v := range entry.Slices {
		rule, err := network.NewSliceRule(v.Src.HardwareAddr(), v.Dst.HardwareAddr(), v.OutPort)
		if err != nil {
			return err
		}
		if err := d.InstallRule(rule); err != nil {
			return errors.Wrapf(err, "failed to install the slice flow (%v -> %v)", v.Src, v.Dst)
		}
	}
	for _, v := range entry.ARP {
		rule, err := network.NewARPRule(v.Src.HardwareAddr(), v.OutPorts)
		if err != nil {
			return err
		}
		if err := d.InstallRule(rule); err != nil {
			return errors.Wrapf(err, "failed to install the ARP flow (%v)", v.Src)
		}
	}
	logger.Infof("installed %v slice flows and %v ARP flows on DPID=%v", len(entry.Slices), len(entry.ARP), d.ID())

	return nil
}

// OnPacketIn drops every frame because the slices are already configured on the switches.
func (r *Topology) OnPacketIn(finder network.Finder, device *network.Device, packet *network.Packet) error {
	r.inspect(device.ID(), packet)
	return nil
}

func (r *Topology) inspect(dpid uint64, packet *network.Packet) {
	frame, err := protocol.Decode(packet.Data)
	if err != nil {
		return
	}

	switch {
	case frame.IsLLDP():
		return
	case frame.IsARP():
		logger.Infof("dropping ARP on DPID=%v: %v -> %v", dpid, frame.SrcMAC, frame.DstMAC)
	default:
		logger.Debugf("dropping a frame on DPID=%v: %v", dpid, frame)
	}
}
