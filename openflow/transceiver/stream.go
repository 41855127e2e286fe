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
	"bufio"
	"io"
	"net"
	"sync"
	"time"
)

// Stream is a buffered I/O channel on top of a switch connection.
type Stream struct {
	channel io.ReadWriteCloser

	reader struct {
		mutex sync.Mutex
		// NOTE: rd needs locking, otherwise Peek()'s result slice can be corrupted
		// by subsequent ReadN() calls because it points to the reader's internal buffer.
		rd      *bufio.Reader
		timeout time.Duration
	}

	writer struct {
		mutex   sync.Mutex
		timeout time.Duration
	}
}

type deadline interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// NewStream returns a new buffered I/O channel. channel is usually a net.Conn.
func NewStream(channel io.ReadWriteCloser, bufSize int) *Stream {
	c := new(Stream)
	c.channel = channel
	c.reader.rd = bufio.NewReaderSize(channel, bufSize)

	return c
}

func (r *Stream) RemoteAddr() string {
	v, ok := r.channel.(interface{ RemoteAddr() net.Addr })
	if !ok || v.RemoteAddr() == nil {
		return "unknown"
	}

	return v.RemoteAddr().String()
}

// SetReadTimeout sets read timeout of the underlying socket if it implements deadline interface.
func (r *Stream) SetReadTimeout(t time.Duration) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	r.reader.timeout = t
}

// SetWriteTimeout sets write timeout of the underlying socket if it implements deadline interface.
func (r *Stream) SetWriteTimeout(t time.Duration) {
	r.writer.mutex.Lock()
	defer r.writer.mutex.Unlock()

	r.writer.timeout = t
}

func deadlineOf(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}

	return time.Now().Add(timeout)
}

// NOTE: The caller should lock the reader mutex before calling this function.
func (r *Stream) setReadDeadline() {
	if d, ok := r.channel.(deadline); ok {
		d.SetReadDeadline(deadlineOf(r.reader.timeout))
	}
}

// Peek returns a copy of the next n bytes without advancing the reader.
func (r *Stream) Peek(n int) ([]byte, error) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	if n <= 0 {
		return []byte{}, nil
	}

	r.setReadDeadline()
	v, err := r.reader.rd.Peek(n)
	if err != nil {
		return nil, err
	}
	p := make([]byte, len(v))
	copy(p, v)

	return p, nil
}

// ReadN reads exactly n bytes. On error, nothing is consumed from the buffer.
func (r *Stream) ReadN(n int) ([]byte, error) {
	r.reader.mutex.Lock()
	defer r.reader.mutex.Unlock()

	r.setReadDeadline()
	// Wait until we have n-bytes data in the reader or timeout.
	if _, err := r.reader.rd.Peek(n); err != nil {
		return nil, err
	}

	p := make([]byte, n)
	if _, err := io.ReadFull(r.reader.rd, p); err != nil {
		return nil, err
	}

	return p, nil
}

// Write writes p to the underlying socket. Concurrent writers are serialized.
func (r *Stream) Write(p []byte) (n int, err error) {
	r.writer.mutex.Lock()
	defer r.writer.mutex.Unlock()

	if d, ok := r.channel.(deadline); ok {
		d.SetWriteDeadline(deadlineOf(r.writer.timeout))
	}

	return r.channel.Write(p)
}

func (r *Stream) Close() error {
	return r.channel.Close()
}
