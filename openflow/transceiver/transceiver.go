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
	"context"
	"encoding"
	"encoding/binary"
	"sync"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("transceiver")
)

const (
	// Allowed idle time before we send an echo request to a switch.
	maxIdleTime = 10 * time.Second
	// I/O timeouts (These timeouts should be less than maxIdleTime).
	readTimeout  = 1 * time.Second
	writeTimeout = readTimeout * 2
	// Unanswered idle echo requests before we give up the switch.
	maxPendingPings = 2
	// Size of the stream buffer. It must be larger than the maximum OpenFlow message length.
	StreamBufferSize = 0x10000
)

type Writer interface {
	Write(msg encoding.BinaryMarshaler) error
}

// Handler receives the decoded messages of a switch. All methods except OnEchoReply
// are called sequentially by the goroutine that executes Transceiver.Run.
type Handler interface {
	OnHello(*openflow.Factory, Writer, *openflow.Hello) error
	OnError(*openflow.Factory, Writer, *openflow.Error) error
	OnFeaturesReply(*openflow.Factory, Writer, *openflow.FeaturesReply) error
	OnPortStatsReply(*openflow.Factory, Writer, *openflow.PortStatsReply) error
	OnPacketIn(*openflow.Factory, Writer, *openflow.PacketIn) error
	// OnEchoReply is called by the reader goroutine with the round-trip time of our echo request.
	OnEchoReply(latency time.Duration)
}

type Transceiver struct {
	stream   *Stream
	observer Handler
	factory  *openflow.Factory

	mutex       sync.Mutex
	pingCounter uint
}

type temporaryError struct {
	error
}

func (r temporaryError) Temporary() bool {
	return true
}

func NewTransceiver(stream *Stream, handler Handler) *Transceiver {
	if stream == nil {
		panic("stream is nil")
	}
	if handler == nil {
		panic("handler is nil")
	}

	return &Transceiver{
		stream:   stream,
		observer: handler,
		factory:  openflow.NewFactory(),
	}
}

func (r *Transceiver) Factory() *openflow.Factory {
	return r.factory
}

func isTimeout(err error) bool {
	v, ok := errors.Cause(err).(interface {
		Timeout() bool
	})
	return ok && v.Timeout()
}

func isTemporaryErr(err error) bool {
	e, ok := errors.Cause(err).(interface {
		Temporary() bool
	})
	return ok && e.Temporary()
}

// Ping sends an echo request whose reply is reported through Handler.OnEchoReply.
func (r *Transceiver) Ping() error {
	return r.sendEchoRequest(false)
}

func (r *Transceiver) sendEchoRequest(liveness bool) error {
	if liveness {
		r.mutex.Lock()
		if r.pingCounter > maxPendingPings {
			r.mutex.Unlock()
			return errors.New("device does not respond to our echo request")
		}
		r.pingCounter++
		r.mutex.Unlock()
	}

	echo := r.factory.NewEchoRequest()
	// We use current timestamp to check network latency between our controller and a switch.
	echo.Data = make([]byte, 8)
	binary.BigEndian.PutUint64(echo.Data, uint64(time.Now().UnixNano()))
	if err := r.Write(echo); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REQUEST message")
	}

	return nil
}

func (r *Transceiver) Run(ctx context.Context) error {
	defer logger.Debugf("transceiver is closed: %v", r.stream.RemoteAddr())
	r.stream.SetReadTimeout(readTimeout)
	r.stream.SetWriteTimeout(writeTimeout)

	readerCtx, cancelReader := context.WithCancel(ctx)
	defer cancelReader()
	reader := r.runReader(readerCtx)

	// Negotiate the protocol version
	packet, err := r.negotiate(ctx, reader)
	if err != nil {
		return errors.Wrap(err, "failed to negotiate the protocol version")
	}

	// Infinite loop
	for {
		// Dispatch the incoming packet
		if err := r.dispatch(packet); err != nil {
			if !isTemporaryErr(err) {
				return err
			}
			// Ignore the temporary error. Just log the error and keep go on.
			logger.Errorf("failed to dispatch the packet: %v", err)
		}

		// Read the next packet
		var ok bool
		select {
		case <-ctx.Done():
			logger.Debug("context done")
			return nil
		case packet, ok = <-reader:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("connection closed")
			}
		}
	}
}

func (r *Transceiver) negotiate(ctx context.Context, reader <-chan []byte) (packet []byte, err error) {
	select {
	case <-ctx.Done():
		return nil, errors.New("context done")
	case <-time.After(30 * time.Second):
		return nil, errors.New("inactive for too long")
	case packet, ok := <-reader:
		if !ok {
			return nil, errors.New("the reader channel is closed")
		}
		// The first message should be HELLO.
		if packet[1] != openflow.OFPT_HELLO {
			return nil, errors.New("missing HELLO message")
		}
		// We only speak OpenFlow 1.3. A newer switch falls back to ours.
		if packet[0] < openflow.OF13_VERSION {
			msg := r.factory.NewError(openflow.OFPET_HELLO_FAILED, openflow.OFPHFC_INCOMPATIBLE, []byte("OpenFlow 1.3 is required"))
			if err := r.Write(msg); err != nil {
				logger.Errorf("failed to send HELLO_FAILED error: %v", err)
			}
			return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "version=%v", packet[0])
		}
		logger.Infof("negotiated to openflow version 1.3 with %v", r.stream.RemoteAddr())

		// Return the initial packet to dispatch it.
		return packet, nil
	}
}

func (r *Transceiver) runReader(ctx context.Context) <-chan []byte {
	// Buffered channel
	c := make(chan []byte, 4096)
	go func() {
		// The channel c will be closed when this goroutine returns in order to notice the connection has been closed.
		defer close(c)

		lastActivated := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			packet, err := r.readPacket()
			if err != nil {
				if !isTimeout(err) {
					logger.Infof("failed to read the next packet from %v: %v", r.stream.RemoteAddr(), err)
					return
				}
				// Timeout occurrs. Send a ping request if necessary.
				if time.Since(lastActivated) > maxIdleTime {
					if err := r.sendEchoRequest(true); err != nil {
						logger.Errorf("failed to send an echo request: %v", err)
						return
					}
				}
				continue
			}
			lastActivated = time.Now()

			ok, err := r.handleEcho(packet)
			if err != nil {
				logger.Errorf("failed to handle the echo request or response: %v", err)
				return
			}
			if ok {
				// Do not forward the echo request and response
				// packets because this reader handles them.
				continue
			}

			select {
			case c <- packet:
			default:
				// Drop the packet if we cannot immediately carry it.
				logger.Error("transceiver buffer full: drop the incoming packet!")
			}
		}
	}()

	return c
}

func (r *Transceiver) readPacket() ([]byte, error) {
	header, err := r.stream.Peek(8) // peek ofp_header
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(header[2:4])
	if length < 8 {
		return nil, openflow.ErrInvalidPacketLength
	}

	return r.stream.ReadN(int(length))
}

func (r *Transceiver) Write(msg encoding.BinaryMarshaler) error {
	packet, err := msg.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = r.stream.Write(packet)

	return err
}

func (r *Transceiver) Close() error {
	return r.stream.Close()
}

func (r *Transceiver) handleEcho(packet []byte) (handled bool, err error) {
	switch packet[1] {
	case openflow.OFPT_ECHO_REQUEST:
		return true, r.handleEchoRequest(packet)
	case openflow.OFPT_ECHO_REPLY:
		return true, r.handleEchoReply(packet)
	default:
		return false, nil
	}
}

func (r *Transceiver) handleEchoRequest(packet []byte) error {
	msg := new(openflow.Echo)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}

	reply := r.factory.NewEchoReply()
	// Copy transaction ID and data from the incoming echo request message
	reply.SetTransactionID(msg.TransactionID())
	reply.Data = msg.Data
	if err := r.Write(reply); err != nil {
		return errors.Wrap(err, "failed to send ECHO_REPLY message")
	}

	return nil
}

func (r *Transceiver) handleEchoReply(packet []byte) error {
	msg := new(openflow.Echo)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return err
	}

	r.mutex.Lock()
	r.pingCounter = 0
	r.mutex.Unlock()

	if len(msg.Data) != 8 {
		// Some switches send an unexpected echo reply data. Ignore it to avoid disconnection.
		logger.Debug("unexpected ECHO_REPLY data")
		return nil
	}
	sent := time.Unix(0, int64(binary.BigEndian.Uint64(msg.Data)))
	latency := time.Since(sent)
	if latency < 0 {
		logger.Debug("ECHO_REPLY timestamp is in the future")
		return nil
	}
	r.observer.OnEchoReply(latency)

	return nil
}

func (r *Transceiver) dispatch(packet []byte) error {
	// HELLO may carry a newer version than the negotiated one.
	if packet[1] != openflow.OFPT_HELLO && packet[0] != openflow.OF13_VERSION {
		return errors.Wrapf(openflow.ErrUnsupportedVersion, "mis-matched OpenFlow version: %v", packet[0])
	}

	switch packet[1] {
	case openflow.OFPT_HELLO:
		return r.handleHello(packet)
	case openflow.OFPT_ERROR:
		return r.handleError(packet)
	case openflow.OFPT_FEATURES_REPLY:
		return r.handleFeaturesReply(packet)
	case openflow.OFPT_MULTIPART_REPLY:
		if len(packet) < 10 || binary.BigEndian.Uint16(packet[8:10]) != openflow.OFPMP_PORT_STATS {
			// Unsupported multipart reply. Do nothing.
			return nil
		}
		return r.handlePortStatsReply(packet)
	case openflow.OFPT_PACKET_IN:
		return r.handlePacketIn(packet)
	default:
		// Barrier replies, port status and other messages are not used.
		return nil
	}
}

func decodeError(err error, name string) error {
	return temporaryError{errors.Wrapf(err, "failed to decode %v", name)}
}

func (r *Transceiver) handleHello(packet []byte) error {
	msg := new(openflow.Hello)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return decodeError(err, "HELLO")
	}

	return r.observer.OnHello(r.factory, r, msg)
}

func (r *Transceiver) handleError(packet []byte) error {
	msg := new(openflow.Error)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return decodeError(err, "ERROR")
	}

	return r.observer.OnError(r.factory, r, msg)
}

func (r *Transceiver) handleFeaturesReply(packet []byte) error {
	msg := new(openflow.FeaturesReply)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return decodeError(err, "FEATURES_REPLY")
	}

	return r.observer.OnFeaturesReply(r.factory, r, msg)
}

func (r *Transceiver) handlePortStatsReply(packet []byte) error {
	msg := new(openflow.PortStatsReply)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return decodeError(err, "PORT_STATS_REPLY")
	}

	return r.observer.OnPortStatsReply(r.factory, r, msg)
}

func (r *Transceiver) handlePacketIn(packet []byte) error {
	msg := new(openflow.PacketIn)
	if err := msg.UnmarshalBinary(packet); err != nil {
		return decodeError(err, "PACKET_IN")
	}

	return r.observer.OnPacketIn(r.factory, r, msg)
}
