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

// Package learning provides the building blocks shared by the forwarding applications:
// the MAC learning table, the controlled flood and the flood storm control.
package learning

import (
	"net"
	"sort"
	"sync"

	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("learning")
)

// Entry is a learned location of a MAC address.
type Entry struct {
	MAC  string `json:"mac"`
	Port uint32 `json:"port"`
}

// Table maps (DPID, MAC) to the port where the MAC was last seen. Entries never expire.
type Table struct {
	mutex sync.RWMutex
	// Key is DPID and then the string form of a MAC address.
	entries map[uint64]map[string]uint32
}

func NewTable() *Table {
	return &Table{entries: make(map[uint64]map[string]uint32)}
}

// Learn records that mac is reachable through port of the switch. The last write wins.
func (r *Table) Learn(dpid uint64, mac net.HardwareAddr, port uint32) {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	m, ok := r.entries[dpid]
	if !ok {
		m = make(map[string]uint32)
		r.entries[dpid] = m
	}
	key := mac.String()
	if prev, ok := m[key]; ok && prev != port {
		logger.Debugf("MAC %v moved from port %v to %v on DPID=%v", key, prev, port, dpid)
	}
	m[key] = port
}

func (r *Table) Lookup(dpid uint64, mac net.HardwareAddr) (port uint32, ok bool) {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	m, ok := r.entries[dpid]
	if !ok {
		return 0, false
	}
	port, ok = m[mac.String()]

	return port, ok
}

// Entries returns the learned MAC addresses of the switch sorted by address.
func (r *Table) Entries(dpid uint64) []Entry {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	v := make([]Entry, 0, len(r.entries[dpid]))
	for mac, port := range r.entries[dpid] {
		v = append(v, Entry{MAC: mac, Port: port})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].MAC < v[j].MAC })

	return v
}

// Forget removes all the entries of the switch.
func (r *Table) Forget(dpid uint64) {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.entries, dpid)
}
