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

package dynamic

import (
	"bytes"
	"net"
	"testing"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"
	"github.com/vincenzodan/SDN-Network-Slicing/protocol"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var (
	h1 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	h2 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x02}
	h3 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x03}
)

type fixedBandwidth struct {
	dpid uint64
	port uint32
	bps  float64
}

func (r *fixedBandwidth) Bandwidth(dpid uint64, port uint32) float64 {
	if dpid != r.dpid || port != r.port {
		return 0
	}
	return r.bps
}

type packetOut struct {
	inPort   uint32
	bufferID uint32
	ports    []uint32
	data     []byte
}

type dummyDatapath struct {
	id   uint64
	outs []packetOut
}

func (r *dummyDatapath) ID() uint64 {
	return r.id
}

func (r *dummyDatapath) PacketOut(inPort, bufferID uint32, ports []uint32, data []byte) error {
	r.outs = append(r.outs, packetOut{inPort, bufferID, ports, data})
	return nil
}

func udpFrame(t *testing.T, src, dst net.HardwareAddr, dport uint16) []byte {
	eth := &layers.Ethernet{SrcMAC: src, DstMAC: dst, EthernetType: layers.EthernetTypeIPv4}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 3),
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: layers.UDPPort(dport)}
	udp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload([]byte("payload"))); err != nil {
		t.Fatalf("failed to serialize layers: %v", err)
	}

	return buf.Bytes()
}

func newTestDynamic(bps float64) (*Dynamic, *fixedBandwidth) {
	bw := &fixedBandwidth{dpid: 1, port: 3, bps: bps}
	return New(learning.NewTable(), policy.NewSelector(policy.DefaultTable(), 8000000), bw), bw
}

func TestDispatch(t *testing.T) {
	samples := []struct {
		Name      string
		Bandwidth float64
		// Port where h3 has been learned on s1. Zero means unknown.
		Learned  uint32
		UDPPort  uint16
		Strict   bool
		Expected []uint32
		Flood    bool
		Plane    policy.Plane
	}{
		{Name: "idle network, unknown destination", Bandwidth: 0, UDPPort: 5001, Expected: []uint32{2, 3}, Flood: true, Plane: policy.Upper},
		{Name: "streaming over the threshold", Bandwidth: 10000000, UDPPort: 9999, Expected: []uint32{2, 3}, Flood: true, Plane: policy.Upper},
		{Name: "streaming on an idle network", Bandwidth: 0, UDPPort: 9999, Expected: []uint32{2, 3}, Flood: true, Plane: policy.Upper},
		{Name: "threshold equality selects the lower path", Bandwidth: 8000000, UDPPort: 5001, Expected: []uint32{2, 4}, Flood: true, Plane: policy.Lower},
		{Name: "learned destination over the threshold", Bandwidth: 9000000, Learned: 2, UDPPort: 5001, Expected: []uint32{2}, Plane: policy.Lower},
		{Name: "learned destination below the threshold", Bandwidth: 1000000, Learned: 3, UDPPort: 5001, Expected: []uint32{3}, Plane: policy.Upper},
		{Name: "strict lower path flood", Bandwidth: 9000000, Learned: 2, UDPPort: 5001, Strict: true, Expected: []uint32{2, 4}, Flood: true, Plane: policy.Lower},
		{Name: "strict mode on the upper path", Bandwidth: 0, Learned: 3, UDPPort: 5001, Strict: true, Expected: []uint32{3}, Plane: policy.Upper},
	}

	for _, v := range samples {
		d, _ := newTestDynamic(v.Bandwidth)
		d.floodLowerPath = v.Strict
		if v.Learned != 0 {
			d.macs.Learn(1, h3, v.Learned)
		}

		dp := &dummyDatapath{id: 1}
		data := udpFrame(t, h1, h3, v.UDPPort)
		packet := &network.Packet{InPort: 1, BufferID: 0x42, Data: data}
		if err := d.dispatch(dp, packet); err != nil {
			t.Fatalf("%v: unexpected error: %v", v.Name, err)
		}

		if len(dp.outs) != 1 {
			t.Fatalf("%v: unexpected number of PACKET_OUTs: expected=1, got=%v", v.Name, len(dp.outs))
		}
		out := dp.outs[0]
		if diff := cmp.Diff(v.Expected, out.ports); diff != "" {
			t.Fatalf("%v: unexpected output ports (-expected +got):\n%v", v.Name, diff)
		}
		if out.inPort != 1 || out.bufferID != 0x42 || !bytes.Equal(out.data, data) {
			t.Fatalf("%v: unexpected PACKET_OUT: %v", v.Name, spew.Sdump(out))
		}

		// The source is always learned.
		if port, ok := d.macs.Lookup(1, h1); !ok || port != 1 {
			t.Fatalf("%v: source is not learned: port=%v, ok=%v", v.Name, port, ok)
		}

		decision := d.Decide(1, 1, mustDecode(t, data))
		if decision.Plane != v.Plane || decision.Flood != v.Flood {
			t.Fatalf("%v: unexpected decision: %v", v.Name, decision)
		}
	}
}

func TestDispatchUsesReferenceLink(t *testing.T) {
	d, bw := newTestDynamic(9000000)
	dp := &dummyDatapath{id: 4}
	data := udpFrame(t, h3, h1, 5001)

	// s4 follows the reference link of s1.
	if err := d.dispatch(dp, &network.Packet{InPort: 3, BufferID: openflow.OFP_NO_BUFFER, Data: data}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]uint32{4, 2}, dp.outs[0].ports); diff != "" {
		t.Fatalf("unexpected output ports (-expected +got):\n%v", diff)
	}

	bw.bps = 0
	if err := d.dispatch(dp, &network.Packet{InPort: 3, BufferID: openflow.OFP_NO_BUFFER, Data: udpFrame(t, h2, h1, 5001)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]uint32{4, 1}, dp.outs[1].ports); diff != "" {
		t.Fatalf("unexpected output ports (-expected +got):\n%v", diff)
	}
}

func TestDispatchMalformedFrame(t *testing.T) {
	d, _ := newTestDynamic(0)
	dp := &dummyDatapath{id: 1}

	if err := d.dispatch(dp, &network.Packet{InPort: 1, Data: []byte{0x01, 0x02}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dp.outs) != 0 {
		t.Fatalf("malformed frame is forwarded: %v", spew.Sdump(dp.outs))
	}
}

func TestFloodLimit(t *testing.T) {
	d, _ := newTestDynamic(0)
	d.storm = learning.NewStormController(1)
	dp := &dummyDatapath{id: 1}
	data := udpFrame(t, h1, h3, 5001)

	for i := 0; i < 3; i++ {
		if err := d.dispatch(dp, &network.Packet{InPort: 1, Data: data}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(dp.outs) != 1 {
		t.Fatalf("unexpected number of floods: expected=1, got=%v", len(dp.outs))
	}

	// Unicast is not limited.
	d.macs.Learn(1, h3, 3)
	if err := d.dispatch(dp, &network.Packet{InPort: 1, Data: data}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dp.outs) != 2 {
		t.Fatalf("unicast is denied: %v", spew.Sdump(dp.outs))
	}
}

func mustDecode(t *testing.T, data []byte) *protocol.Frame {
	frame, err := protocol.Decode(data)
	if err != nil {
		t.Fatalf("failed to decode the frame: %v", err)
	}
	return frame
}
