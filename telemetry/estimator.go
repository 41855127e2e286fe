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

// Package telemetry measures the traffic of the switch ports and the latency of the
// control channels.
package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("telemetry")
)

// Sample is a port counter reading.
type Sample struct {
	DPID      uint64
	Port      uint32
	RxBytes   uint64
	TxBytes   uint64
	Timestamp time.Time
}

// PortKey identifies a switch port.
type PortKey struct {
	DPID uint64
	Port uint32
}

type history struct {
	prev    Sample
	cur     Sample
	hasPrev bool
}

// Estimator keeps the latest two samples of every port and derives their bit rates.
type Estimator struct {
	mutex   sync.Mutex
	samples map[PortKey]*history
}

func NewEstimator() *Estimator {
	return &Estimator{samples: make(map[PortKey]*history)}
}

// Record shifts the current sample of the port to the previous one and stores the new sample.
func (r *Estimator) Record(dpid uint64, port uint32, rx, tx uint64, now time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	s := Sample{DPID: dpid, Port: port, RxBytes: rx, TxBytes: tx, Timestamp: now}
	key := PortKey{DPID: dpid, Port: port}
	h, ok := r.samples[key]
	if !ok {
		r.samples[key] = &history{cur: s}
		return
	}
	h.prev = h.cur
	h.hasPrev = true
	h.cur = s
}

// delta returns the byte counts and the seconds elapsed between the latest two samples.
// It fails if there is no previous sample, if the clock did not move forward, or if a
// counter went backwards.
// A caller should make sure the mutex is locked before calling this function.
func (r *Estimator) delta(key PortKey) (rx, tx uint64, dt float64, ok bool) {
	h, found := r.samples[key]
	if !found || !h.hasPrev {
		return 0, 0, 0, false
	}
	dt = h.cur.Timestamp.Sub(h.prev.Timestamp).Seconds()
	if dt <= 0 {
		return 0, 0, 0, false
	}
	// Counter reset
	if h.cur.RxBytes < h.prev.RxBytes || h.cur.TxBytes < h.prev.TxBytes {
		return 0, 0, 0, false
	}

	return h.cur.RxBytes - h.prev.RxBytes, h.cur.TxBytes - h.prev.TxBytes, dt, true
}

// Estimate returns ((Δrx + Δtx) * 8) / Δt of the port in bits per second. The byte
// counts are summed before the division so that the result is not rounded twice.
func (r *Estimator) Estimate(dpid uint64, port uint32) float64 {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rx, tx, dt, ok := r.delta(PortKey{DPID: dpid, Port: port})
	if !ok {
		return 0
	}

	return float64(rx+tx) * 8 / dt
}

// Rates returns the per-direction bit rates of the port.
func (r *Estimator) Rates(dpid uint64, port uint32) (rx, tx float64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rxBytes, txBytes, dt, ok := r.delta(PortKey{DPID: dpid, Port: port})
	if !ok {
		return 0, 0
	}

	return float64(rxBytes) * 8 / dt, float64(txBytes) * 8 / dt
}

// Ports returns the ports that have at least one sample, sorted by DPID and port number.
func (r *Estimator) Ports() []PortKey {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v := make([]PortKey, 0, len(r.samples))
	for k := range r.samples {
		v = append(v, k)
	}
	sort.Slice(v, func(i, j int) bool {
		if v[i].DPID != v[j].DPID {
			return v[i].DPID < v[j].DPID
		}
		return v[i].Port < v[j].Port
	})

	return v
}

// Forget removes the history of all the ports of the switch.
func (r *Estimator) Forget(dpid uint64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for k := range r.samples {
		if k.DPID == dpid {
			delete(r.samples, k)
		}
	}
}
