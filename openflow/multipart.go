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
	"encoding/binary"
)

// PortStatsRequest is a OFPMP_PORT_STATS multipart request. PortNo may be OFPP_ANY to query all ports.
type PortStatsRequest struct {
	Message
	PortNo uint32
}

func (r *PortStatsRequest) MarshalBinary() ([]byte, error) {
	v := make([]byte, 16)
	binary.BigEndian.PutUint16(v[0:2], OFPMP_PORT_STATS)
	// v[2:4] is flags and v[4:8] is padding
	binary.BigEndian.PutUint32(v[8:12], r.PortNo)
	// v[12:16] is padding
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *PortStatsRequest) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 16 {
		return ErrInvalidPacketLength
	}
	r.PortNo = binary.BigEndian.Uint32(payload[8:12])

	return nil
}

type PortStats struct {
	PortNo       uint32
	RxPackets    uint64
	TxPackets    uint64
	RxBytes      uint64
	TxBytes      uint64
	RxDropped    uint64
	TxDropped    uint64
	RxErrors     uint64
	TxErrors     uint64
	DurationSec  uint32
	DurationNsec uint32
}

const portStatsLength = 112

type PortStatsReply struct {
	Message
	Flags uint16
	Stats []PortStats
}

// MoreFollows returns whether the switch splits the reply into more messages.
func (r *PortStatsReply) MoreFollows() bool {
	return r.Flags&OFPMPF_REPLY_MORE != 0
}

func (r *PortStatsReply) MarshalBinary() ([]byte, error) {
	v := make([]byte, 8+len(r.Stats)*portStatsLength)
	binary.BigEndian.PutUint16(v[0:2], OFPMP_PORT_STATS)
	binary.BigEndian.PutUint16(v[2:4], r.Flags)
	for i, s := range r.Stats {
		b := v[8+i*portStatsLength:]
		binary.BigEndian.PutUint32(b[0:4], s.PortNo)
		binary.BigEndian.PutUint64(b[8:16], s.RxPackets)
		binary.BigEndian.PutUint64(b[16:24], s.TxPackets)
		binary.BigEndian.PutUint64(b[24:32], s.RxBytes)
		binary.BigEndian.PutUint64(b[32:40], s.TxBytes)
		binary.BigEndian.PutUint64(b[40:48], s.RxDropped)
		binary.BigEndian.PutUint64(b[48:56], s.TxDropped)
		binary.BigEndian.PutUint64(b[56:64], s.RxErrors)
		binary.BigEndian.PutUint64(b[64:72], s.TxErrors)
		// b[72:104] holds frame, overrun, CRC and collision counters that we do not track.
		binary.BigEndian.PutUint32(b[104:108], s.DurationSec)
		binary.BigEndian.PutUint32(b[108:112], s.DurationNsec)
	}
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *PortStatsReply) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 8 {
		return ErrInvalidPacketLength
	}
	if binary.BigEndian.Uint16(payload[0:2]) != OFPMP_PORT_STATS {
		return ErrUnsupportedMessage
	}
	r.Flags = binary.BigEndian.Uint16(payload[2:4])

	body := payload[8:]
	if len(body)%portStatsLength != 0 {
		return ErrInvalidPacketLength
	}
	r.Stats = make([]PortStats, 0, len(body)/portStatsLength)
	for ; len(body) > 0; body = body[portStatsLength:] {
		r.Stats = append(r.Stats, PortStats{
			PortNo:       binary.BigEndian.Uint32(body[0:4]),
			RxPackets:    binary.BigEndian.Uint64(body[8:16]),
			TxPackets:    binary.BigEndian.Uint64(body[16:24]),
			RxBytes:      binary.BigEndian.Uint64(body[24:32]),
			TxBytes:      binary.BigEndian.Uint64(body[32:40]),
			RxDropped:    binary.BigEndian.Uint64(body[40:48]),
			TxDropped:    binary.BigEndian.Uint64(body[48:56]),
			RxErrors:     binary.BigEndian.Uint64(body[56:64]),
			TxErrors:     binary.BigEndian.Uint64(body[64:72]),
			DurationSec:  binary.BigEndian.Uint32(body[104:108]),
			DurationNsec: binary.BigEndian.Uint32(body[108:112]),
		})
	}

	return nil
}
