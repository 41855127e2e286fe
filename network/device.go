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
	"encoding"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
)

const (
	// A learned flow sent within this duration is not sent again.
	flowCacheExpiration = 5 * time.Second
)

var (
	ErrClosedDevice = errors.New("already closed device")
)

type Features struct {
	DPID       uint64
	NumBuffers uint32
	NumTables  uint8
}

// Device is a switch that has finished the handshake. Its methods are safe for concurrent use.
type Device struct {
	mutex     sync.RWMutex
	id        uint64
	session   *session
	features  Features
	ports     map[uint32]bool
	flowCache *flowCache
	valid     bool
	closed    bool
}

func newDevice(s *session) *Device {
	if s == nil {
		panic("Session is nil")
	}

	return &Device{
		session:   s,
		ports:     make(map[uint32]bool),
		flowCache: newFlowCache(flowCacheExpiration),
	}
}

func (r *Device) String() string {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return fmt.Sprintf("Device DPID=%v, Features=%+v, # of ports=%v, Connected=%v", r.id, r.features, len(r.ports), !r.closed)
}

func (r *Device) ID() uint64 {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.id
}

func (r *Device) isValid() bool {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.valid
}

func (r *Device) Features() Features {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.features
}

func (r *Device) setFeatures(f Features) {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.id = f.DPID
	r.features = f
	r.valid = true
}

// Ports returns the physical ports reported by the latest port statistics, in ascending order.
func (r *Device) Ports() []uint32 {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v := make([]uint32, 0, len(r.ports))
	for p := range r.ports {
		v = append(v, p)
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	return v
}

func (r *Device) updatePorts(stats []openflow.PortStats) {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, s := range stats {
		if s.PortNo > openflow.OFPP_MAX {
			continue
		}
		r.ports[s.PortNo] = true
	}
}

func (r *Device) IsClosed() bool {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.closed
}

// SendMessage writes msg to the switch. A write failure closes the session of this device.
func (r *Device) SendMessage(msg encoding.BinaryMarshaler) error {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.send(msg)
}

// A caller should make sure the mutex is locked before calling this function.
func (r *Device) send(msg encoding.BinaryMarshaler) error {
	if msg == nil {
		panic("Message is nil")
	}
	if r.closed {
		return ErrClosedDevice
	}

	if err := r.session.Write(msg); err != nil {
		logger.Errorf("failed to send a message to DPID=%v, closing the session: %v", r.id, err)
		r.closed = true
		r.session.close()
		return err
	}

	return nil
}

func (r *Device) newFlowMod(rule Rule) (*openflow.FlowMod, error) {
	if rule.Match == nil {
		return nil, errors.New("nil flow match")
	}
	if err := rule.Match.Error(); err != nil {
		return nil, err
	}

	msg := r.session.factory().NewFlowMod(openflow.OFPFC_ADD)
	msg.Cookie = rule.Cookie
	msg.Priority = rule.Priority
	msg.IdleTimeout = rule.IdleTimeout
	msg.HardTimeout = rule.HardTimeout
	msg.Match = rule.Match
	msg.Actions = outputs(rule.Outputs)

	return msg, nil
}

// InstallRule adds a flow entry to the switch.
func (r *Device) InstallRule(rule Rule) error {
	msg, err := r.newFlowMod(rule)
	if err != nil {
		return err
	}
	logger.Debugf("installing a flow on DPID=%v: %v", r.ID(), rule)

	return r.SendMessage(msg)
}

// InstallDefaultRule adds the table-miss entry that sends every unmatched packet to the controller.
func (r *Device) InstallDefaultRule() error {
	return r.InstallRule(Rule{
		Match:    openflow.NewMatch(), // Wildcard
		Priority: PriorityDefault,
		Cookie:   tableMissCookie,
		Outputs:  []uint32{openflow.OFPP_CONTROLLER},
	})
}

// InstallLearnedRule adds the flow entry of a learned destination. It does nothing if
// the same flow has been sent recently.
func (r *Device) InstallLearnedRule(inPort uint32, src, dst net.HardwareAddr, outPort uint32, idleTimeout uint16) error {
	rule, err := newLearnedRule(inPort, src, dst, outPort, idleTimeout)
	if err != nil {
		return err
	}

	ok, err := r.flowCache.InProgress(rule.Match, outPort)
	if err != nil {
		return err
	}
	if ok {
		logger.Debugf("skip to install the duplicated flow: DPID=%v, %v -> %v", r.ID(), src, dst)
		return nil
	}
	if err := r.InstallRule(rule); err != nil {
		return err
	}

	return r.flowCache.Add(rule.Match, outPort)
}

// PacketOut sends data to the output ports in order. bufferID may refer to a packet
// buffered on the switch, or it is OFP_NO_BUFFER.
func (r *Device) PacketOut(inPort, bufferID uint32, ports []uint32, data []byte) error {
	msg := r.session.factory().NewPacketOut()
	msg.BufferID = bufferID
	msg.InPort = inPort
	msg.Actions = outputs(ports)
	msg.Data = data

	return r.SendMessage(msg)
}

func (r *Device) RequestPortStats() error {
	return r.SendMessage(r.session.factory().NewPortStatsRequest(openflow.OFPP_ANY))
}

// Probe sends an echo request to measure the latency of the control channel.
func (r *Device) Probe() error {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrClosedDevice
	}
	if err := r.session.ping(); err != nil {
		r.closed = true
		r.session.close()
		return err
	}

	return nil
}

// RemoveLearnedFlows removes the flows of the learned destinations. The table-miss entry
// and the rules installed at the handshake (streaming, slices and ARP) are kept.
func (r *Device) RemoveLearnedFlows() error {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	msg := r.session.factory().NewFlowMod(openflow.OFPFC_DELETE)
	msg.TableID = openflow.OFPTT_ALL
	msg.Cookie = learnedCookie
	msg.CookieMask = tableMissCookie | learnedCookie
	if err := r.send(msg); err != nil {
		return err
	}
	r.flowCache.RemoveAll()

	return r.send(r.session.factory().NewBarrierRequest())
}

// Close disconnects the session of this device.
func (r *Device) Close() {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
	r.session.close()
}
