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
	"errors"
)

type FlowMod struct {
	Message
	Cookie      uint64
	CookieMask  uint64
	TableID     uint8
	Command     uint8
	IdleTimeout uint16
	HardTimeout uint16
	Priority    uint16
	BufferID    uint32
	OutPort     uint32
	OutGroup    uint32
	Flags       uint16
	Match       *Match
	// Actions are applied immediately. An empty list means drop.
	Actions []Output
}

func NewFlowMod(xid uint32, cmd uint8) *FlowMod {
	return &FlowMod{
		Message:  NewMessage(OFPT_FLOW_MOD, xid),
		Command:  cmd,
		BufferID: OFP_NO_BUFFER,
		// No restriction for delete commands.
		OutPort:  OFPP_ANY,
		OutGroup: OFPG_ANY,
		Match:    NewMatch(),
	}
}

func (r *FlowMod) MarshalBinary() ([]byte, error) {
	if r.Match == nil {
		return nil, errors.New("empty flow match")
	}

	v := make([]byte, 40)
	binary.BigEndian.PutUint64(v[0:8], r.Cookie)
	binary.BigEndian.PutUint64(v[8:16], r.CookieMask)
	v[16] = r.TableID
	v[17] = r.Command
	binary.BigEndian.PutUint16(v[18:20], r.IdleTimeout)
	binary.BigEndian.PutUint16(v[20:22], r.HardTimeout)
	binary.BigEndian.PutUint16(v[22:24], r.Priority)
	binary.BigEndian.PutUint32(v[24:28], r.BufferID)
	binary.BigEndian.PutUint32(v[28:32], r.OutPort)
	binary.BigEndian.PutUint32(v[32:36], r.OutGroup)
	binary.BigEndian.PutUint16(v[36:38], r.Flags)
	// v[38:40] is padding

	match, err := r.Match.MarshalBinary()
	if err != nil {
		return nil, err
	}
	v = append(v, match...)
	if len(r.Actions) > 0 {
		inst, err := marshalApplyActions(r.Actions)
		if err != nil {
			return nil, err
		}
		v = append(v, inst...)
	}
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *FlowMod) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 48 {
		return ErrInvalidPacketLength
	}
	r.Cookie = binary.BigEndian.Uint64(payload[0:8])
	r.CookieMask = binary.BigEndian.Uint64(payload[8:16])
	r.TableID = payload[16]
	r.Command = payload[17]
	r.IdleTimeout = binary.BigEndian.Uint16(payload[18:20])
	r.HardTimeout = binary.BigEndian.Uint16(payload[20:22])
	r.Priority = binary.BigEndian.Uint16(payload[22:24])
	r.BufferID = binary.BigEndian.Uint32(payload[24:28])
	r.OutPort = binary.BigEndian.Uint32(payload[28:32])
	r.OutGroup = binary.BigEndian.Uint32(payload[32:36])
	r.Flags = binary.BigEndian.Uint16(payload[36:38])

	r.Match = NewMatch()
	if err := r.Match.UnmarshalBinary(payload[40:]); err != nil {
		return err
	}
	matchLength, err := paddedMatchLength(payload[40:])
	if err != nil {
		return err
	}
	if len(payload) < 40+matchLength {
		return ErrInvalidPacketLength
	}
	actions, err := unmarshalInstructions(payload[40+matchLength:])
	if err != nil {
		return err
	}
	r.Actions = actions

	return nil
}
