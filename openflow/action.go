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

// Output is the OFPAT_OUTPUT action, the only action this controller emits.
type Output struct {
	Port   uint32
	MaxLen uint16
}

func NewOutput(port uint32) Output {
	v := Output{Port: port}
	if port == OFPP_CONTROLLER {
		v.MaxLen = OFPCML_NO_BUFFER
	}

	return v
}

func (r Output) MarshalBinary() ([]byte, error) {
	v := make([]byte, 16)
	binary.BigEndian.PutUint16(v[0:2], OFPAT_OUTPUT)
	binary.BigEndian.PutUint16(v[2:4], 16)
	binary.BigEndian.PutUint32(v[4:8], r.Port)
	binary.BigEndian.PutUint16(v[8:10], r.MaxLen)
	// v[10:16] is padding

	return v, nil
}

func marshalActions(actions []Output) ([]byte, error) {
	v := make([]byte, 0, len(actions)*16)
	for _, a := range actions {
		b, err := a.MarshalBinary()
		if err != nil {
			return nil, err
		}
		v = append(v, b...)
	}

	return v, nil
}

// unmarshalActions decodes an action list. Actions other than OUTPUT are skipped.
func unmarshalActions(data []byte) ([]Output, error) {
	actions := make([]Output, 0)
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, ErrInvalidPacketLength
		}
		length := int(binary.BigEndian.Uint16(data[2:4]))
		if length < 8 || len(data) < length {
			return nil, ErrInvalidPacketLength
		}
		if binary.BigEndian.Uint16(data[0:2]) == OFPAT_OUTPUT && length >= 16 {
			actions = append(actions, Output{
				Port:   binary.BigEndian.Uint32(data[4:8]),
				MaxLen: binary.BigEndian.Uint16(data[8:10]),
			})
		}
		data = data[length:]
	}

	return actions, nil
}

// marshalApplyActions encodes an OFPIT_APPLY_ACTIONS instruction.
func marshalApplyActions(actions []Output) ([]byte, error) {
	a, err := marshalActions(actions)
	if err != nil {
		return nil, err
	}

	v := make([]byte, 8, 8+len(a))
	binary.BigEndian.PutUint16(v[0:2], OFPIT_APPLY_ACTIONS)
	binary.BigEndian.PutUint16(v[2:4], uint16(8+len(a)))
	// v[4:8] is padding

	return append(v, a...), nil
}

// unmarshalInstructions collects the output actions of all APPLY_ACTIONS instructions in data.
func unmarshalInstructions(data []byte) ([]Output, error) {
	actions := make([]Output, 0)
	for len(data) > 0 {
		if len(data) < 8 {
			return nil, ErrInvalidPacketLength
		}
		length := int(binary.BigEndian.Uint16(data[2:4]))
		if length < 8 || len(data) < length {
			return nil, ErrInvalidPacketLength
		}
		if binary.BigEndian.Uint16(data[0:2]) == OFPIT_APPLY_ACTIONS {
			v, err := unmarshalActions(data[8:length])
			if err != nil {
				return nil, err
			}
			actions = append(actions, v...)
		}
		data = data[length:]
	}

	return actions, nil
}
