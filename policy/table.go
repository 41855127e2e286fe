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

// Package policy holds the static knowledge of the fabric: which switch ports face
// hosts and which belong to the upper or lower path, together with the rules that
// are pinned on every switch when it connects.
package policy

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("policy")
)

// PortSet is an ordered set of switch port numbers.
type PortSet []uint32

func NewPortSet(ports ...uint32) PortSet {
	if len(ports) == 0 {
		return PortSet{}
	}

	v := make(PortSet, len(ports))
	copy(v, ports)
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	// Remove duplicates in place.
	n := 1
	for i := 1; i < len(v); i++ {
		if v[i] != v[n-1] {
			v[n] = v[i]
			n++
		}
	}

	return v[:n]
}

func (r PortSet) Contains(port uint32) bool {
	i := sort.Search(len(r), func(i int) bool { return r[i] >= port })
	return i < len(r) && r[i] == port
}

// Equal compares two sets regardless of their order.
func (r PortSet) Equal(set PortSet) bool {
	a, b := NewPortSet(r...), NewPortSet(set...)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func (r PortSet) intersects(set PortSet) bool {
	for _, v := range set {
		if r.Contains(v) {
			return true
		}
	}

	return false
}

// StreamingRule forwards the streaming flow arriving on InPort to OutPort.
type StreamingRule struct {
	InPort  uint32 `yaml:"in_port"`
	OutPort uint32 `yaml:"out_port"`
}

// SliceRule pins the traffic from Src to Dst on OutPort.
type SliceRule struct {
	Src     MAC    `yaml:"src"`
	Dst     MAC    `yaml:"dst"`
	OutPort uint32 `yaml:"out_port"`
}

// ARPRule forwards the ARP broadcasts of Src to OutPorts.
type ARPRule struct {
	Src      MAC     `yaml:"src"`
	OutPorts PortSet `yaml:"out_ports"`
}

type Entry struct {
	Hosts     PortSet         `yaml:"hosts"`
	Upper     PortSet         `yaml:"upper"`
	Lower     PortSet         `yaml:"lower"`
	Streaming []StreamingRule `yaml:"streaming"`
	Slices    []SliceRule     `yaml:"slices"`
	ARP       []ARPRule       `yaml:"arp"`
}

func (r Entry) normalize() Entry {
	r.Hosts = NewPortSet(r.Hosts...)
	r.Upper = NewPortSet(r.Upper...)
	r.Lower = NewPortSet(r.Lower...)
	for i := range r.ARP {
		r.ARP[i].OutPorts = NewPortSet(r.ARP[i].OutPorts...)
	}

	return r
}

func (r Entry) validate() error {
	if r.Hosts.intersects(r.Upper) {
		return errors.New("host and upper port sets overlap")
	}
	if r.Hosts.intersects(r.Lower) {
		return errors.New("host and lower port sets overlap")
	}
	if r.Upper.intersects(r.Lower) {
		return errors.New("upper and lower port sets overlap")
	}
	for _, v := range r.Streaming {
		if v.InPort == 0 || v.OutPort == 0 {
			return fmt.Errorf("invalid streaming rule: %+v", v)
		}
	}
	for _, v := range r.Slices {
		if v.Src.IsZero() || v.Dst.IsZero() || v.OutPort == 0 {
			return fmt.Errorf("invalid slice rule: %v -> %v (port=%v)", v.Src, v.Dst, v.OutPort)
		}
	}
	for _, v := range r.ARP {
		if v.Src.IsZero() || len(v.OutPorts) == 0 {
			return fmt.Errorf("invalid ARP rule: %v -> %v", v.Src, v.OutPorts)
		}
	}

	return nil
}

// Table maps a switch DPID to its policy entry. It is immutable after creation.
type Table struct {
	entries map[uint64]Entry
}

// NewTable validates the entries and returns a new table.
func NewTable(entries map[uint64]Entry) (*Table, error) {
	v := &Table{entries: make(map[uint64]Entry, len(entries))}
	for dpid, e := range entries {
		e = e.normalize()
		if err := e.validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid policy for DPID %v", dpid)
		}
		v.entries[dpid] = e
	}

	return v, nil
}

// Entry returns the policy of the switch. An unknown switch has empty port sets and no rules.
func (r *Table) Entry(dpid uint64) Entry {
	v, ok := r.entries[dpid]
	if !ok {
		return Entry{Hosts: PortSet{}, Upper: PortSet{}, Lower: PortSet{}}
	}

	return v
}

func (r *Table) DPIDs() []uint64 {
	v := make([]uint64, 0, len(r.entries))
	for dpid := range r.entries {
		v = append(v, dpid)
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	return v
}

func (r *Table) String() string {
	s := make([]string, 0, len(r.entries))
	for _, dpid := range r.DPIDs() {
		e := r.entries[dpid]
		s = append(s, fmt.Sprintf("s%v(hosts=%v, upper=%v, lower=%v)", dpid, e.Hosts, e.Upper, e.Lower))
	}

	return strings.Join(s, ", ")
}

// MAC is a hardware address that can be read from a YAML string.
type MAC net.HardwareAddr

func MustParseMAC(s string) MAC {
	v, err := net.ParseMAC(s)
	if err != nil {
		panic(fmt.Sprintf("invalid MAC address %v: %v", s, err))
	}

	return MAC(v)
}

func (r MAC) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(r)
}

func (r MAC) IsZero() bool {
	return len(r) == 0
}

func (r MAC) String() string {
	return net.HardwareAddr(r).String()
}
