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
	"fmt"
	"net"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
)

// Priorities of the flow entries we install. A larger value wins.
const (
	PriorityDefault   uint16 = 0
	PriorityLearned   uint16 = 1
	PrioritySliceMAC  uint16 = 10
	PrioritySliceARP  uint16 = 20
	PriorityStreaming uint16 = 100
)

// We use MSB of the cookie to represent whether the flow is table miss or not, and the
// next bit to mark the learned flows that can be removed without reinstallation.
const (
	tableMissCookie = 0x1 << 63
	learnedCookie   = 0x1 << 62
)

var (
	broadcastMAC = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

// Rule is a flow entry whose instruction applies the output actions in order.
type Rule struct {
	Match       *openflow.Match
	Priority    uint16
	IdleTimeout uint16
	HardTimeout uint16
	Cookie      uint64
	// An empty list drops the matched packets.
	Outputs []uint32
}

func (r Rule) String() string {
	return fmt.Sprintf("Rule(priority=%v, idle=%v, outputs=%v)", r.Priority, r.IdleTimeout, r.Outputs)
}

// NewStreamingRule forwards the UDP datagrams destined to udpPort that arrive on inPort to outPort.
func NewStreamingRule(inPort uint32, udpPort uint16, outPort uint32) (Rule, error) {
	match := openflow.NewMatch()
	match.SetInPort(inPort)
	match.SetEtherType(0x0800) // IPv4
	match.SetIPProtocol(17)    // UDP
	match.SetDstPort(udpPort)
	if err := match.Error(); err != nil {
		return Rule{}, err
	}

	return Rule{
		Match:    match,
		Priority: PriorityStreaming,
		Outputs:  []uint32{outPort},
	}, nil
}

// NewSliceRule forwards the frames from src to dst to outPort.
func NewSliceRule(src, dst net.HardwareAddr, outPort uint32) (Rule, error) {
	match := openflow.NewMatch()
	match.SetSrcMAC(src)
	match.SetDstMAC(dst)
	if err := match.Error(); err != nil {
		return Rule{}, err
	}

	return Rule{
		Match:    match,
		Priority: PrioritySliceMAC,
		Outputs:  []uint32{outPort},
	}, nil
}

// NewARPRule forwards the ARP broadcasts of src to outPorts.
func NewARPRule(src net.HardwareAddr, outPorts []uint32) (Rule, error) {
	match := openflow.NewMatch()
	match.SetSrcMAC(src)
	match.SetDstMAC(broadcastMAC)
	match.SetEtherType(0x0806) // ARP
	if err := match.Error(); err != nil {
		return Rule{}, err
	}

	outputs := make([]uint32, len(outPorts))
	copy(outputs, outPorts)

	return Rule{
		Match:    match,
		Priority: PrioritySliceARP,
		Outputs:  outputs,
	}, nil
}

func newLearnedRule(inPort uint32, src, dst net.HardwareAddr, outPort uint32, idleTimeout uint16) (Rule, error) {
	match := openflow.NewMatch()
	match.SetInPort(inPort)
	match.SetSrcMAC(src)
	match.SetDstMAC(dst)
	if err := match.Error(); err != nil {
		return Rule{}, err
	}

	return Rule{
		Match:       match,
		Priority:    PriorityLearned,
		IdleTimeout: idleTimeout,
		Cookie:      learnedCookie,
		Outputs:     []uint32{outPort},
	}, nil
}

func outputs(ports []uint32) []openflow.Output {
	v := make([]openflow.Output, len(ports))
	for i, p := range ports {
		v[i] = openflow.NewOutput(p)
	}

	return v
}
