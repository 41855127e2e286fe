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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the snapshots as Prometheus gauges.
type Metrics struct {
	rx      *prometheus.GaugeVec
	tx      *prometheus.GaugeVec
	latency *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	v := &Metrics{
		rx: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slicer_port_rx_bits_per_second",
				Help: "Received bits per second of the switch port",
			},
			[]string{
				"dpid",
				"port",
			}),
		tx: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slicer_port_tx_bits_per_second",
				Help: "Transmitted bits per second of the switch port",
			},
			[]string{
				"dpid",
				"port",
			}),
		latency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slicer_switch_latency_ms",
				Help: "Round-trip time of the control channel to the switch",
			},
			[]string{
				"dpid",
			}),
	}
	reg.MustRegister(v.rx, v.tx, v.latency)

	return v
}

func (r *Metrics) OnSnapshot(s Snapshot) {
	// Removed switches disappear from the exposition.
	r.rx.Reset()
	r.tx.Reset()
	r.latency.Reset()

	for _, p := range s.Ports {
		dpid := strconv.FormatUint(p.DPID, 10)
		port := strconv.FormatUint(uint64(p.Port), 10)
		r.rx.WithLabelValues(dpid, port).Set(p.RxBps)
		r.tx.WithLabelValues(dpid, port).Set(p.TxBps)
	}
	for dpid, ms := range s.Latency {
		r.latency.WithLabelValues(strconv.FormatUint(dpid, 10)).Set(ms)
	}
}
