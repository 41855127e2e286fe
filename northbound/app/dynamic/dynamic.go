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

// Package dynamic implements the adaptive slicing: every unmatched frame is forwarded
// over the upper path while the reference link is lightly loaded, and over the lower
// path once its bandwidth reaches the threshold. Streaming flows always take the upper path.
package dynamic

import (
	"fmt"

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
	logger = logging.MustGetLogger("dynamic")
)

// Bandwidth returns the measured bandwidth of a switch port in bits per second.
type Bandwidth interface {
	Bandwidth(dpid uint64, port uint32) float64
}

type datapath interface {
	ID() uint64
	PacketOut(inPort, bufferID uint32, ports []uint32, data []byte) error
}

type Dynamic struct {
	app.BaseProcessor
	macs      *learning.Table
	selector  *policy.Selector
	bandwidth Bandwidth
	storm     *learning.StormController
	// Destination UDP port of the streaming flows.
	streamingPort uint16
	// Reference link whose bandwidth drives the path selection of every switch.
	refDPID uint64
	refPort uint32
	// Flood whenever the lower path is selected, even for a learned destination.
	floodLowerPath bool
}

func New(macs *learning.Table, selector *policy.Selector, bandwidth Bandwidth) *Dynamic {
	if macs == nil {
		panic("nil MAC table")
	}
	if selector == nil {
		panic("nil path selector")
	}
	if bandwidth == nil {
		panic("nil bandwidth source")
	}

	return &Dynamic{
		macs:          macs,
		selector:      selector,
		bandwidth:     bandwidth,
		storm:         learning.NewStormController(0),
		streamingPort: 9999,
		refDPID:       1,
		refPort:       3,
	}
}

func (r *Dynamic) Init() error {
	port := viper.GetInt("slicing.streaming_port")
	if port <= 0 || port > 0xFFFF {
		return fmt.Errorf("invalid slicing.streaming_port: %v", port)
	}
	r.streamingPort = uint16(port)

	r.refDPID = viper.GetUint64("slicing.reference_dpid")
	ref := viper.GetInt("slicing.reference_port")
	if ref <= 0 {
		return fmt.Errorf("invalid slicing.reference_port: %v", ref)
	}
	r.refPort = uint32(ref)

	limit := viper.GetInt("slicing.flood_limit")
	if limit < 0 {
		return fmt.Errorf("invalid slicing.flood_limit: %v", limit)
	}
	r.storm = learning.NewStormController(uint(limit))
	r.floodLowerPath = viper.GetBool("dynamic.flood_lower_path")

	return nil
}

func (r *Dynamic) Name() string {
	return "Dynamic"
}

func (r *Dynamic) String() string {
	return fmt.Sprintf("%v (reference=s%v:%v, threshold=%v bps, streaming=%v)", r.Name(), r.refDPID, r.refPort, r.selector.Threshold(), r.streamingPort)
}

func (r *Dynamic) OnDeviceUp(finder network.Finder, device *network.Device) error {
	entry := r.selector.Table().Entry(device.ID())
	if err := learning.InstallStreamingRules(device, entry.Streaming, r.streamingPort); err != nil {
		return err
	}

	return r.BaseProcessor.OnDeviceUp(finder, device)
}

func (r *Dynamic) OnPacketIn(finder network.Finder, device *network.Device, packet *network.Packet) error {
	return r.dispatch(device, packet)
}

// Decision is the forwarding decision for a frame.
type Decision struct {
	Plane     policy.Plane
	Links     policy.PortSet
	Bandwidth float64
	Outputs   []uint32
	Flood     bool
}

func (r Decision) String() string {
	return fmt.Sprintf("plane=%v, links=%v, bandwidth=%.2f Mbps, outputs=%v, flood=%v", r.Plane, r.Links, r.Bandwidth/1000000, r.Outputs, r.Flood)
}

// Decide selects the path of the frame that arrived on inPort, and then its output ports.
func (r *Dynamic) Decide(dpid uint64, inPort uint32, frame *protocol.Frame) Decision {
	streaming := frame.IsStreaming(r.streamingPort)
	bps := r.bandwidth.Bandwidth(r.refDPID, r.refPort)
	entry := r.selector.Table().Entry(dpid)

	d := Decision{
		Plane:     r.selector.Plane(streaming, bps),
		Links:     r.selector.Select(dpid, streaming, bps),
		Bandwidth: bps,
	}
	if r.floodLowerPath && d.Links.Equal(entry.Lower) {
		d.Outputs = learning.Flood(entry.Hosts, d.Links, inPort)
		d.Flood = true
		return d
	}
	d.Outputs, d.Flood = learning.Forward(r.macs, dpid, frame.DstMAC, entry.Hosts, d.Links, inPort)

	return d
}

func (r *Dynamic) dispatch(dp datapath, packet *network.Packet) error {
	frame, err := protocol.Decode(packet.Data)
	if err != nil {
		// Drop the malformed frame silently.
		logger.Debugf("ignoring a malformed frame from DPID=%v: %v", dp.ID(), err)
		return nil
	}
	r.macs.Learn(dp.ID(), frame.SrcMAC, packet.InPort)

	d := r.Decide(dp.ID(), packet.InPort, frame)
	logger.Debugf("DPID=%v, %v -> %v, inport=%v: %v", dp.ID(), frame.SrcMAC, frame.DstMAC, packet.InPort, d)
	if d.Flood && !r.storm.Allow(dp.ID()) {
		return nil
	}

	if err := dp.PacketOut(packet.InPort, packet.BufferID, d.Outputs, packet.Data); err != nil {
		return errors.Wrap(err, "failed to send PACKET_OUT")
	}

	return nil
}
