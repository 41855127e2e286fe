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
	"net"
	"sort"
)

// Match is an OXM flow match. A field that has not been set is wildcarded.
type Match struct {
	err error
	// Key is an OXM field type and value is its encoded payload.
	fields map[uint8][]byte
}

// NewMatch returns a Match whose fields are all wildcarded.
func NewMatch() *Match {
	return &Match{
		fields: make(map[uint8][]byte),
	}
}

// Error returns the first error raised by the setters. MarshalBinary also returns it.
func (r *Match) Error() error {
	return r.err
}

func (r *Match) setError(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Match) SetInPort(port uint32) {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, port)
	r.fields[OFPXMT_OFB_IN_PORT] = v
}

func (r *Match) InPort() (wildcard bool, port uint32) {
	v, ok := r.fields[OFPXMT_OFB_IN_PORT]
	if !ok {
		return true, 0
	}

	return false, binary.BigEndian.Uint32(v)
}

func (r *Match) SetEtherType(t uint16) {
	v := make([]byte, 2)
	binary.BigEndian.PutUint16(v, t)
	r.fields[OFPXMT_OFB_ETH_TYPE] = v
}

func (r *Match) EtherType() (wildcard bool, etherType uint16) {
	v, ok := r.fields[OFPXMT_OFB_ETH_TYPE]
	if !ok {
		return true, 0
	}

	return false, binary.BigEndian.Uint16(v)
}

func (r *Match) setMAC(field uint8, mac net.HardwareAddr) {
	if len(mac) != 6 {
		r.setError(fmt.Errorf("field %v: %v", field, ErrInvalidMACAddress))
		return
	}
	v := make([]byte, 6)
	copy(v, mac)
	r.fields[field] = v
}

func (r *Match) SetSrcMAC(mac net.HardwareAddr) {
	r.setMAC(OFPXMT_OFB_ETH_SRC, mac)
}

func (r *Match) SrcMAC() (wildcard bool, mac net.HardwareAddr) {
	v, ok := r.fields[OFPXMT_OFB_ETH_SRC]
	if !ok {
		return true, nil
	}

	return false, net.HardwareAddr(v)
}

func (r *Match) SetDstMAC(mac net.HardwareAddr) {
	r.setMAC(OFPXMT_OFB_ETH_DST, mac)
}

func (r *Match) DstMAC() (wildcard bool, mac net.HardwareAddr) {
	v, ok := r.fields[OFPXMT_OFB_ETH_DST]
	if !ok {
		return true, nil
	}

	return false, net.HardwareAddr(v)
}

func (r *Match) SetIPProtocol(p uint8) {
	wildcard, etherType := r.EtherType()
	if wildcard {
		r.setError(fmt.Errorf("SetIPProtocol: %v", ErrMissingEtherType))
		return
	}
	// IPv4?
	if etherType != 0x0800 {
		r.setError(fmt.Errorf("SetIPProtocol: %v", ErrUnsupportedEtherType))
		return
	}
	r.fields[OFPXMT_OFB_IP_PROTO] = []byte{p}
}

func (r *Match) IPProtocol() (wildcard bool, protocol uint8) {
	v, ok := r.fields[OFPXMT_OFB_IP_PROTO]
	if !ok {
		return true, 0
	}

	return false, v[0]
}

func (r *Match) SetDstPort(p uint16) {
	wildcard, proto := r.IPProtocol()
	if wildcard {
		r.setError(fmt.Errorf("SetDstPort: %v", ErrMissingIPProtocol))
		return
	}

	v := make([]byte, 2)
	binary.BigEndian.PutUint16(v, p)
	switch proto {
	// TCP
	case 0x06:
		r.fields[OFPXMT_OFB_TCP_DST] = v
		delete(r.fields, OFPXMT_OFB_UDP_DST)
	// UDP
	case 0x11:
		r.fields[OFPXMT_OFB_UDP_DST] = v
		delete(r.fields, OFPXMT_OFB_TCP_DST)
	default:
		r.setError(fmt.Errorf("SetDstPort: %v", ErrUnsupportedIPProtocol))
	}
}

func (r *Match) DstPort() (wildcard bool, port uint16) {
	if v, ok := r.fields[OFPXMT_OFB_UDP_DST]; ok {
		return false, binary.BigEndian.Uint16(v)
	}
	if v, ok := r.fields[OFPXMT_OFB_TCP_DST]; ok {
		return false, binary.BigEndian.Uint16(v)
	}

	return true, 0
}

func (r *Match) sortedFields() []uint8 {
	keys := make([]uint8, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	// Ascending field order also satisfies the OXM prerequisites.
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}

func oxmHeader(field uint8, length int) uint32 {
	return uint32(OFPXMC_OPENFLOW_BASIC)<<16 | uint32(field)<<9 | uint32(length)
}

// MarshalBinary encodes ofp_match including the trailing padding to a multiple of 8 bytes.
func (r *Match) MarshalBinary() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	oxm := make([]byte, 0, 64)
	for _, field := range r.sortedFields() {
		value := r.fields[field]
		header := make([]byte, 4)
		binary.BigEndian.PutUint32(header, oxmHeader(field, len(value)))
		oxm = append(oxm, header...)
		oxm = append(oxm, value...)
	}

	length := 4 + len(oxm)
	v := make([]byte, 4, length+8)
	binary.BigEndian.PutUint16(v[0:2], OFPMT_OXM)
	binary.BigEndian.PutUint16(v[2:4], uint16(length))
	v = append(v, oxm...)
	if rem := length % 8; rem > 0 {
		v = append(v, make([]byte, 8-rem)...)
	}

	return v, nil
}

// UnmarshalBinary decodes ofp_match. Unknown and masked OXM fields are skipped.
func (r *Match) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return ErrInvalidPacketLength
	}
	if binary.BigEndian.Uint16(data[0:2]) != OFPMT_OXM {
		return ErrUnsupportedMatchType
	}
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if length < 4 || len(data) < length {
		return ErrInvalidPacketLength
	}

	r.fields = make(map[uint8][]byte)
	buf := data[4:length]
	for len(buf) >= 4 {
		header := binary.BigEndian.Uint32(buf[0:4])
		class := uint16(header >> 16)
		field := uint8((header >> 9) & 0x7F)
		hasMask := (header>>8)&0x1 == 1
		n := int(header & 0xFF)
		if len(buf) < 4+n {
			return ErrInvalidPacketLength
		}
		if class == OFPXMC_OPENFLOW_BASIC && !hasMask {
			v := make([]byte, n)
			copy(v, buf[4:4+n])
			r.fields[field] = v
		}
		buf = buf[4+n:]
	}

	return nil
}

// paddedMatchLength returns the length of the encoded ofp_match at the head of data, including its padding.
func paddedMatchLength(data []byte) (int, error) {
	if len(data) < 4 {
		return 0, ErrInvalidPacketLength
	}
	length := int(binary.BigEndian.Uint16(data[2:4]))
	if rem := length % 8; rem > 0 {
		length += 8 - rem
	}

	return length, nil
}
