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

// Package protocol classifies the frames carried by PACKET_IN messages.
package protocol

import (
	"bytes"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

var (
	broadcastMAC = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

// Frame is the subset of an Ethernet frame that forwarding decisions depend on.
type Frame struct {
	SrcMAC    net.HardwareAddr
	DstMAC    net.HardwareAddr
	EtherType layers.EthernetType
	// IPv4 is true when the frame carries a decodable IPv4 header.
	IPv4       bool
	IPProtocol layers.IPProtocol
	// UDP is true when the frame carries a decodable UDP header inside IPv4.
	UDP     bool
	SrcPort uint16
	DstPort uint16
}

func (r *Frame) String() string {
	return fmt.Sprintf("Frame(src=%v, dst=%v, type=%v, proto=%v, dport=%v)", r.SrcMAC, r.DstMAC, r.EtherType, r.IPProtocol, r.DstPort)
}

// Decode parses the Ethernet header of data and as much of the IPv4/UDP headers as possible.
// It returns an error only when there is no Ethernet header. A truncated or unknown upper
// layer just leaves the corresponding fields unset.
func Decode(data []byte) (*Frame, error) {
	var (
		eth layers.Ethernet
		ip4 layers.IPv4
		udp layers.UDP
	)
	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &eth, &ip4, &udp)
	parser.IgnoreUnsupported = true

	decoded := make([]gopacket.LayerType, 0, 3)
	err := parser.DecodeLayers(data, &decoded)
	if len(decoded) == 0 {
		if err == nil {
			err = errors.New("empty frame")
		}
		return nil, errors.Wrap(err, "invalid ethernet frame")
	}

	frame := new(Frame)
	for _, t := range decoded {
		switch t {
		case layers.LayerTypeEthernet:
			frame.SrcMAC = copyMAC(eth.SrcMAC)
			frame.DstMAC = copyMAC(eth.DstMAC)
			frame.EtherType = eth.EthernetType
		case layers.LayerTypeIPv4:
			frame.IPv4 = true
			frame.IPProtocol = ip4.Protocol
		case layers.LayerTypeUDP:
			frame.UDP = true
			frame.SrcPort = uint16(udp.SrcPort)
			frame.DstPort = uint16(udp.DstPort)
		}
	}

	return frame, nil
}

func copyMAC(mac net.HardwareAddr) net.HardwareAddr {
	v := make(net.HardwareAddr, len(mac))
	copy(v, mac)
	return v
}

// IsStreaming returns whether the frame is an IPv4 UDP datagram destined to port.
func (r *Frame) IsStreaming(port uint16) bool {
	return r.IPv4 && r.IPProtocol == layers.IPProtocolUDP && r.UDP && r.DstPort == port
}

func (r *Frame) IsARP() bool {
	return r.EtherType == layers.EthernetTypeARP
}

func (r *Frame) IsLLDP() bool {
	return r.EtherType == layers.EthernetTypeLinkLayerDiscovery
}

func (r *Frame) IsBroadcast() bool {
	return bytes.Equal(r.DstMAC, broadcastMAC)
}
