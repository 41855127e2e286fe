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

package transceiver

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
)

type dummyHandler struct {
	hellos    chan *openflow.Hello
	packetIns chan *openflow.PacketIn
	latencies chan time.Duration
}

func newDummyHandler() *dummyHandler {
	return &dummyHandler{
		hellos:    make(chan *openflow.Hello, 8),
		packetIns: make(chan *openflow.PacketIn, 8),
		latencies: make(chan time.Duration, 8),
	}
}

func (r *dummyHandler) OnHello(f *openflow.Factory, w Writer, v *openflow.Hello) error {
	r.hellos <- v
	return nil
}

func (r *dummyHandler) OnError(f *openflow.Factory, w Writer, v *openflow.Error) error {
	return nil
}

func (r *dummyHandler) OnFeaturesReply(f *openflow.Factory, w Writer, v *openflow.FeaturesReply) error {
	return nil
}

func (r *dummyHandler) OnPortStatsReply(f *openflow.Factory, w Writer, v *openflow.PortStatsReply) error {
	return nil
}

func (r *dummyHandler) OnPacketIn(f *openflow.Factory, w Writer, v *openflow.PacketIn) error {
	r.packetIns <- v
	return nil
}

func (r *dummyHandler) OnEchoReply(latency time.Duration) {
	r.latencies <- latency
}

func readMessage(t *testing.T, conn net.Conn) []byte {
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	header := make([]byte, 8)
	if _, err := io.ReadFull(conn, header); err != nil {
		t.Fatalf("failed to read a message header: %v", err)
	}
	length := binary.BigEndian.Uint16(header[2:4])
	body := make([]byte, int(length)-8)
	if _, err := io.ReadFull(conn, body); err != nil {
		t.Fatalf("failed to read a message body: %v", err)
	}

	return append(header, body...)
}

func writeMessage(t *testing.T, conn net.Conn, msg openflow.Outgoing) {
	packet, err := msg.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal a message: %v", err)
	}
	conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if _, err := conn.Write(packet); err != nil {
		t.Fatalf("failed to write a message: %v", err)
	}
}

func TestNegotiationRejectsOldVersion(t *testing.T) {
	ctrl, sw := net.Pipe()
	defer sw.Close()
	tr := NewTransceiver(NewStream(ctrl, StreamBufferSize), newDummyHandler())
	defer tr.Close()

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	// OpenFlow 1.0 HELLO
	sw.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if _, err := sw.Write([]byte{0x01, openflow.OFPT_HELLO, 0x00, 0x08, 0x00, 0x00, 0x00, 0x01}); err != nil {
		t.Fatalf("failed to write HELLO: %v", err)
	}

	packet := readMessage(t, sw)
	msg := new(openflow.Error)
	if err := msg.UnmarshalBinary(packet); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type() != openflow.OFPT_ERROR || msg.Class != openflow.OFPET_HELLO_FAILED {
		t.Fatalf("unexpected reply: type=%v, class=%v", msg.Type(), msg.Class)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a negotiation error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("transceiver did not terminate")
	}
}

func TestEchoAndPacketIn(t *testing.T) {
	ctrl, sw := net.Pipe()
	defer sw.Close()
	handler := newDummyHandler()
	tr := NewTransceiver(NewStream(ctrl, StreamBufferSize), handler)
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	f := openflow.NewFactory()
	writeMessage(t, sw, f.NewHello())
	select {
	case <-handler.hellos:
	case <-time.After(3 * time.Second):
		t.Fatal("HELLO is not delivered")
	}

	echo := f.NewEchoRequest()
	echo.Data = []byte("ping")
	writeMessage(t, sw, echo)
	reply := new(openflow.Echo)
	if err := reply.UnmarshalBinary(readMessage(t, sw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Type() != openflow.OFPT_ECHO_REPLY || reply.TransactionID() != echo.TransactionID() {
		t.Fatalf("unexpected echo reply: type=%v, xid=%v", reply.Type(), reply.TransactionID())
	}
	if !bytes.Equal(reply.Data, []byte("ping")) {
		t.Fatalf("unexpected echo data: expected=ping, got=%s", reply.Data)
	}

	in := &openflow.PacketIn{
		Message:  openflow.NewMessage(openflow.OFPT_PACKET_IN, 10),
		BufferID: openflow.OFP_NO_BUFFER,
		InPort:   2,
		Data:     []byte{0x01, 0x02},
	}
	writeMessage(t, sw, in)
	select {
	case v := <-handler.packetIns:
		if v.InPort != 2 {
			t.Fatalf("unexpected input port: expected=2, got=%v", v.InPort)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("PACKET_IN is not delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("transceiver did not terminate")
	}
}

func TestPingLatency(t *testing.T) {
	ctrl, sw := net.Pipe()
	defer sw.Close()
	handler := newDummyHandler()
	tr := NewTransceiver(NewStream(ctrl, StreamBufferSize), handler)
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	f := openflow.NewFactory()
	writeMessage(t, sw, f.NewHello())
	<-handler.hellos

	pingErr := make(chan error, 1)
	go func() { pingErr <- tr.Ping() }()
	request := new(openflow.Echo)
	if err := request.UnmarshalBinary(readMessage(t, sw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := <-pingErr; err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if request.Type() != openflow.OFPT_ECHO_REQUEST || len(request.Data) != 8 {
		t.Fatalf("unexpected echo request: type=%v, data=%x", request.Type(), request.Data)
	}

	reply := f.NewEchoReply()
	reply.SetTransactionID(request.TransactionID())
	reply.Data = request.Data
	writeMessage(t, sw, reply)

	select {
	case latency := <-handler.latencies:
		if latency < 0 || latency > 3*time.Second {
			t.Fatalf("unexpected latency: %v", latency)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("echo latency is not reported")
	}
}
