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
	"fmt"
)

type Error struct {
	Message
	Class uint16
	Code  uint16
	Data  []byte
}

func (r *Error) String() string {
	return fmt.Sprintf("ERROR (class=%v, code=%v, data=%v bytes)", r.Class, r.Code, len(r.Data))
}

func (r *Error) MarshalBinary() ([]byte, error) {
	v := make([]byte, 4+len(r.Data))
	binary.BigEndian.PutUint16(v[0:2], r.Class)
	binary.BigEndian.PutUint16(v[2:4], r.Code)
	copy(v[4:], r.Data)
	r.SetPayload(v)

	return r.Message.MarshalBinary()
}

func (r *Error) UnmarshalBinary(data []byte) error {
	if err := r.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := r.Payload()
	if len(payload) < 4 {
		return ErrInvalidPacketLength
	}
	r.Class = binary.BigEndian.Uint16(payload[0:2])
	r.Code = binary.BigEndian.Uint16(payload[2:4])
	if len(payload) > 4 {
		r.Data = payload[4:]
	}

	return nil
}
