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

// Package service pins the traffic classes to fixed paths: streaming flows use the upper
// path and everything else uses the lower path, regardless of the load.
package service

import (
	"fmt"
	"net"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"
	"github.com/vincenzodan/SDN-Network-Slicing/protocol"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	logger = logging.MustGetLogger("service")
)

type datapath interface {
	ID() uint64
	PacketOut(inPort, bufferID uint32, ports []uint32, data []byte) error
	InstallLearnedRule(inPort uint32, src, dst net.HardwareAddr, outPort uint32, idleTimeout uint16) error
}

type Service struct {
	app.BaseProcessor
	macs          *learning.Table
	table         *policy.Table
	streamingPort uint16
	// Idle timeout of the learned flows in seconds.
	idleTimeout uint16
}

func New(macs *learning.Table, table *policy.Table) *Service {
	if macs == nil {
		panic("nil MAC table")
	}
	if table == nil {
		panic("nil policy table")
	}

	return &Service{
		macs:          macs,
		table:         table,
		streamingPort: 9999,
		idleTimeout:   30,
	}
}

func (r *Service) Init() error {
	port := viper.GetInt("slicing.streaming_port")
	if port <= 0 || port > 0xFFFF {
		return fmt.Errorf("invalid slicing.streaming_port: %v", port)
	}
	r.streamingPort = uint16(port)

	timeout := viper.GetInt("service.idle_timeout")
	if timeout < 0 || timeout > 0xFFFF {
		return fmt.Errorf("invalid service.idle_timeout: %v", timeout)
	}
	r.idleTimeout = uint16(timeout)

	return nil
}

func (r *Service) Name() string {
	return "Service"
}

func (r *Service) String() string {
	return fmt.Sprintf("%v (streaming=%v, idle_timeout=%v)", r.Name(), r.streamingPort, r.idleTimeout)
}

func (r *Service) OnDeviceUp(finder network.Finder, device *network.Device) error {
	entry := r.table.Entry(device.ID())
	if err := learning.InstallStreamingRules(device, entry.Streaming, r.streamingPort); err != nil {
		return err
	}

	return r.BaseProcessor.OnDeviceUp(finder, device)
}

func (r *Service) OnPacketIn(finder network.Finder, device *network.Device, packet *network.Packet) error {
	return r.dispatch(device, packet)
}

func (r *Service) dispatch(dp datapath, packet *network.Packet) error {
	frame, err := protocol.Decode(packet.Data)
	if err != nil {
		logger.Debugf("ignoring a malformed frame from DPID=%v: %v", dp.ID(), err)
		return nil
	}
	r.macs.Learn(dp.ID(), frame.SrcMAC, packet.InPort)

	entry := r.table.Entry(dp.ID())
	links := entry.Lower
	if frame.IsStreaming(r.streamingPort) {
		links = entry.Upper
	}
	ports, flood := learning.Forward(r.macs, dp.ID(), frame.DstMAC, entry.Hosts, links, packet.InPort)
	logger.Debugf("DPID=%v, %v -> %v, inport=%v: outputs=%v, flood=%v", dp.ID(), frame.SrcMAC, frame.DstMAC, packet.InPort, ports, flood)

	// A single output is stable enough to be offloaded to the switch.
	if len(ports) == 1 {
		if err := dp.InstallLearnedRule(packet.InPort, frame.SrcMAC, frame.DstMAC, ports[0], r.idleTimeout); err != nil {
			return errors.Wrap(err, "failed to install the learned flow")
		}
	}

	if err := dp.PacketOut(packet.InPort, packet.BufferID, ports, packet.Data); err != nil {
		return errors.Wrap(err, "failed to send PACKET_OUT")
	}

	return nil
}
