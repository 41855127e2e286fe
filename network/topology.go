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

package network

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

type watcher interface {
	DeviceAdded(*Device)
	// DeviceRemoved returns false if d is not the registered device of its DPID.
	DeviceRemoved(d *Device) bool
}

// topology is the registry of the live devices. It holds at most one device per DPID.
type topology struct {
	mutex   sync.RWMutex
	devices map[uint64]*Device
}

func newTopology() *topology {
	return &topology{
		devices: make(map[uint64]*Device),
	}
}

func (r *topology) String() string {
	var buf bytes.Buffer
	for _, v := range r.Devices() {
		buf.WriteString(fmt.Sprintf("%v\n", v))
	}

	return buf.String()
}

func (r *topology) Devices() []*Device {
	// Read lock
	r.mutex.RLock()
	v := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		v = append(v, d)
	}
	r.mutex.RUnlock()

	sort.Slice(v, func(i, j int) bool { return v[i].ID() < v[j].ID() })

	return v
}

// Device may return nil if there is no live device whose DPID is dpid.
func (r *topology) Device(dpid uint64) *Device {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.devices[dpid]
}

// DeviceAdded registers d, and closes the previous device that has the same DPID.
func (r *topology) DeviceAdded(d *Device) {
	// Write lock
	r.mutex.Lock()
	prev := r.devices[d.ID()]
	r.devices[d.ID()] = d
	r.mutex.Unlock()

	if prev != nil && prev != d {
		// Sometimes a switch makes a new fresh connection while the previous
		// one is still alive. The new connection wins.
		logger.Warningf("replacing the previous session of the device (DPID=%v)", d.ID())
		prev.Close()
	}
	logger.Infof("device is added: DPID=%v", d.ID())
}

func (r *topology) DeviceRemoved(d *Device) bool {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// The device may have been replaced by a new session.
	if r.devices[d.ID()] != d {
		return false
	}
	delete(r.devices, d.ID())
	logger.Infof("device is removed: DPID=%v", d.ID())

	return true
}
