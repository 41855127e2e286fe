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

package telemetry

import (
	"time"
)

type PortRate struct {
	DPID  uint64  `json:"dpid"`
	Port  uint32  `json:"port"`
	RxBps float64 `json:"rx_bps"`
	TxBps float64 `json:"tx_bps"`
}

// Bps returns the sum of both directions.
func (r PortRate) Bps() float64 {
	return r.RxBps + r.TxBps
}

// Snapshot is the traffic and latency view published once per collector tick.
type Snapshot struct {
	Timestamp time.Time  `json:"timestamp"`
	Ports     []PortRate `json:"ports"`
	// Latency is the control channel round-trip time of each switch in milliseconds.
	Latency map[uint64]float64 `json:"latency_ms"`
}

// Observer is notified with the latest snapshot after every collector tick. Observers run
// on their own goroutine, so a slow observer skips snapshots instead of delaying the polling.
type Observer interface {
	OnSnapshot(Snapshot)
}

type ObserverFunc func(Snapshot)

func (r ObserverFunc) OnSnapshot(s Snapshot) {
	r(s)
}
