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

package network

import (
	"context"
	"net"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
	"github.com/vincenzodan/SDN-Network-Slicing/openflow/transceiver"

	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("network")
)

// Packet is a frame reported by a PACKET_IN message.
type Packet struct {
	InPort   uint32
	BufferID uint32
	Data     []byte
}

type EventListener interface {
	OnPacketIn(Finder, *Device, *Packet) error
	OnDeviceUp(Finder, *Device) error
	OnDeviceDown(Finder, *Device) error
}

// StatsListener receives the measurements reported by the switches.
type StatsListener interface {
	OnPortStats(dpid uint64, stats []openflow.PortStats)
	OnEchoReply(dpid uint64, rtt time.Duration)
}

type Finder interface {
	Device(dpid uint64) *Device
	Devices() []*Device
}

type Controller struct {
	topo     *topology
	listener EventListener
	stats    StatsListener
}

func NewController() *Controller {
	return &Controller{
		topo:     newTopology(),
		listener: nopListener{},
		stats:    nopListener{},
	}
}

// SetEventListener should be called before AddConnection.
func (r *Controller) SetEventListener(l EventListener) {
	if l == nil {
		panic("nil event listener")
	}
	r.listener = l
}

// SetStatsListener should be called before AddConnection.
func (r *Controller) SetStatsListener(l StatsListener) {
	if l == nil {
		panic("nil stats listener")
	}
	r.stats = l
}

// AddConnection starts a new session on c. The session is closed when ctx is canceled.
func (r *Controller) AddConnection(ctx context.Context, c net.Conn) {
	conf := sessionConfig{
		stream:   transceiver.NewStream(c, transceiver.StreamBufferSize),
		watcher:  r.topo,
		finder:   r.topo,
		listener: r.listener,
		stats:    r.stats,
	}
	session := newSession(ctx, conf)
	go session.Run()
}

func (r *Controller) Device(dpid uint64) *Device {
	return r.topo.Device(dpid)
}

func (r *Controller) Devices() []*Device {
	return r.topo.Devices()
}

func (r *Controller) String() string {
	return r.topo.String()
}

type nopListener struct{}

func (r nopListener) OnPacketIn(Finder, *Device, *Packet) error {
	return nil
}

func (r nopListener) OnDeviceUp(Finder, *Device) error {
	return nil
}

func (r nopListener) OnDeviceDown(Finder, *Device) error {
	return nil
}

func (r nopListener) OnPortStats(uint64, []openflow.PortStats) {}

func (r nopListener) OnEchoReply(uint64, time.Duration) {}
