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

package openflow

import (
	"bytes"
	"net"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
)

func TestStreamingMatchEncoding(t *testing.T) {
	m := NewMatch()
	m.SetInPort(1)
	m.SetEtherType(0x0800)
	m.SetIPProtocol(17)
	m.SetDstPort(9999)

	got, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []byte{
		0x00, 0x01, 0x00, 0x1d,
		0x80, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01,
		0x80, 0x00, 0x0a, 0x02, 0x08, 0x00,
		0x80, 0x00, 0x14, 0x01, 0x11,
		0x80, 0x00, 0x20, 0x02, 0x27, 0x0f,
		0x00, 0x00, 0x00,
	}
	if !bytes.Equal(expected, got) {
		t.Fatalf("unexpected match: expected=%x, got=%x", expected, got)
	}

	decoded := NewMatch()
	if err := decoded.UnmarshalBinary(got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, port := decoded.DstPort(); port != 9999 {
		t.Fatalf("unexpected UDP destination port: expected=9999, got=%v", port)
	}
	if _, port := decoded.InPort(); port != 1 {
		t.Fatalf("unexpected input port: expected=1, got=%v", port)
	}
}

func TestWildcardMatchEncoding(t *testing.T) {
	got, err := NewMatch().MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(expected, got) {
		t.Fatalf("unexpected match: expected=%x, got=%x", expected, got)
	}
}

func TestMatchPrerequisites(t *testing.T) {
	m := NewMatch()
	m.SetIPProtocol(17)
	if m.Error() == nil {
		t.Fatal("expected an error for IP protocol without ethernet type")
	}
	if _, err := m.MarshalBinary(); err == nil {
		t.Fatal("expected MarshalBinary to report the setter error")
	}

	m = NewMatch()
	m.SetSrcMAC(net.HardwareAddr{0x00, 0x01})
	if m.Error() == nil {
		t.Fatal("expected an error for a short MAC address")
	}
}

func TestFlowModEncoding(t *testing.T) {
	f := NewFactory()
	flow := f.NewFlowMod(OFPFC_ADD)
	flow.Priority = 100
	flow.IdleTimeout = 30
	flow.Match.SetInPort(2)
	flow.Actions = []Output{NewOutput(1)}

	packet, err := flow.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if packet[0] != OF13_VERSION || packet[1] != OFPT_FLOW_MOD {
		t.Fatalf("unexpected header: %x", packet[:8])
	}
	// header(8) + flow_mod(40) + match(16) + instruction(8) + output(16)
	if len(packet) != 88 {
		t.Fatalf("unexpected length: expected=88, got=%v", len(packet))
	}

	decoded := new(FlowMod)
	if err := decoded.UnmarshalBinary(packet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Priority != 100 || decoded.IdleTimeout != 30 || decoded.Command != OFPFC_ADD {
		t.Fatalf("unexpected flow mod: %v", spew.Sdump(decoded))
	}
	if diff := cmp.Diff([]Output{{Port: 1}}, decoded.Actions); diff != "" {
		t.Fatalf("unexpected actions (-expected +got):\n%v", diff)
	}
}

func TestTableMissAction(t *testing.T) {
	v := NewOutput(OFPP_CONTROLLER)
	if v.MaxLen != OFPCML_NO_BUFFER {
		t.Fatalf("unexpected max_len: expected=%x, got=%x", OFPCML_NO_BUFFER, v.MaxLen)
	}
}

func TestPacketInDecoding(t *testing.T) {
	frame := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06}
	in := &PacketIn{
		Message:  NewMessage(OFPT_PACKET_IN, 7),
		BufferID: OFP_NO_BUFFER,
		Length:   uint16(len(frame)),
		InPort:   3,
		Data:     frame,
	}
	packet, err := in.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := new(PacketIn)
	if err := decoded.UnmarshalBinary(packet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.InPort != 3 {
		t.Fatalf("unexpected input port: expected=3, got=%v", decoded.InPort)
	}
	if decoded.BufferID != OFP_NO_BUFFER {
		t.Fatalf("unexpected buffer ID: expected=%x, got=%x", uint32(OFP_NO_BUFFER), decoded.BufferID)
	}
	if !bytes.Equal(frame, decoded.Data) {
		t.Fatalf("unexpected data: expected=%x, got=%x", frame, decoded.Data)
	}
}

func TestPacketOutEncoding(t *testing.T) {
	out := NewFactory().NewPacketOut()
	out.BufferID = 42
	out.InPort = 1
	out.Actions = []Output{NewOutput(2), NewOutput(3)}
	out.Data = []byte{0xde, 0xad}

	packet, err := out.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := new(PacketOut)
	if err := decoded.UnmarshalBinary(packet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.BufferID != 42 || decoded.InPort != 1 {
		t.Fatalf("unexpected packet out: %v", spew.Sdump(decoded))
	}
	if diff := cmp.Diff([]Output{{Port: 2}, {Port: 3}}, decoded.Actions); diff != "" {
		t.Fatalf("unexpected actions (-expected +got):\n%v", diff)
	}
	if !bytes.Equal([]byte{0xde, 0xad}, decoded.Data) {
		t.Fatalf("unexpected data: %x", decoded.Data)
	}
}

func TestPortStatsReplyDecoding(t *testing.T) {
	reply := &PortStatsReply{
		Message: NewMessage(OFPT_MULTIPART_REPLY, 9),
		Stats: []PortStats{
			{PortNo: 1, RxBytes: 1000, TxBytes: 2000},
			{PortNo: OFPP_LOCAL, RxBytes: 1, TxBytes: 1},
		},
	}
	packet, err := reply.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded := new(PortStatsReply)
	if err := decoded.UnmarshalBinary(packet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(reply.Stats, decoded.Stats); diff != "" {
		t.Fatalf("unexpected stats (-expected +got):\n%v", diff)
	}
	if decoded.MoreFollows() {
		t.Fatal("unexpected REPLY_MORE flag")
	}
}

func TestTruncatedMessages(t *testing.T) {
	if err := new(PacketIn).UnmarshalBinary([]byte{0x04, 0x0a, 0x00, 0x0c, 0, 0, 0, 1, 0, 0, 0, 0}); err != ErrInvalidPacketLength {
		t.Fatalf("unexpected error: expected=%v, got=%v", ErrInvalidPacketLength, err)
	}
	if err := new(Message).UnmarshalBinary([]byte{0x04, 0x00, 0x00, 0x10}); err != ErrInvalidPacketLength {
		t.Fatalf("unexpected error: expected=%v, got=%v", ErrInvalidPacketLength, err)
	}
}
