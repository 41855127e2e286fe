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
	"context"
	"sync"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
)

// Poller is a live switch that the collector polls.
type Poller interface {
	ID() uint64
	// RequestPortStats sends a port statistics request for all ports.
	RequestPortStats() error
	// Probe sends an echo request whose round-trip time is reported back to the collector.
	Probe() error
}

// Lister returns the switches that are live at the moment.
type Lister interface {
	Pollers() []Poller
}

type ListerFunc func() []Poller

func (r ListerFunc) Pollers() []Poller {
	return r()
}

// Collector polls every live switch once per interval and feeds the replies into the estimator.
type Collector struct {
	interval  time.Duration
	estimator *Estimator
	lister    Lister

	// Holds the latest snapshot that is not delivered to the observers yet.
	published chan Snapshot

	mutex     sync.Mutex
	latency   map[uint64]time.Duration
	snapshot  Snapshot
	observers []Observer
}

func NewCollector(interval time.Duration, e *Estimator, l Lister) *Collector {
	if interval <= 0 {
		panic("non-positive collector interval")
	}
	if e == nil {
		panic("nil estimator")
	}
	if l == nil {
		panic("nil lister")
	}

	return &Collector{
		interval:  interval,
		estimator: e,
		lister:    l,
		published: make(chan Snapshot, 1),
		latency:   make(map[uint64]time.Duration),
		snapshot:  Snapshot{Ports: []PortRate{}, Latency: map[uint64]float64{}},
	}
}

func (r *Collector) Estimator() *Estimator {
	return r.estimator
}

func (r *Collector) AddObserver(o Observer) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.observers = append(r.observers, o)
}

// Run polls the switches until ctx is canceled.
func (r *Collector) Run(ctx context.Context) {
	logger.Infof("telemetry collector is started (interval=%v)", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	go r.notify(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("telemetry collector is stopped")
			return
		case now := <-ticker.C:
			r.tick(now)
		}
	}
}

func (r *Collector) tick(now time.Time) {
	// The live set is fixed at the beginning of the tick.
	pollers := r.lister.Pollers()
	live := make(map[uint64]bool, len(pollers))
	for _, p := range pollers {
		live[p.ID()] = true
	}

	r.publish(r.update(now, live))

	for _, p := range pollers {
		if err := p.RequestPortStats(); err != nil {
			logger.Errorf("failed to request the port statistics (DPID=%v): %v", p.ID(), err)
			continue
		}
		if err := p.Probe(); err != nil {
			logger.Errorf("failed to probe the switch (DPID=%v): %v", p.ID(), err)
		}
	}
}

// publish hands the snapshot over to the notifier without blocking. An undelivered older
// snapshot is replaced, so a slow observer never delays the polling.
func (r *Collector) publish(s Snapshot) {
	for {
		select {
		case r.published <- s:
			return
		default:
		}

		select {
		case old := <-r.published:
			logger.Debugf("dropping the undelivered snapshot of %v", old.Timestamp)
		default:
		}
	}
}

func (r *Collector) notify(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-r.published:
			for _, o := range r.getObservers() {
				o.OnSnapshot(s)
			}
		}
	}
}

func (r *Collector) getObservers() []Observer {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v := make([]Observer, len(r.observers))
	copy(v, r.observers)

	return v
}

// update builds a new snapshot from the live switches and forgets the history of the others.
func (r *Collector) update(now time.Time, live map[uint64]bool) Snapshot {
	s := Snapshot{
		Timestamp: now,
		Ports:     []PortRate{},
		Latency:   make(map[uint64]float64),
	}

	for _, k := range r.estimator.Ports() {
		if !live[k.DPID] {
			r.estimator.Forget(k.DPID)
			continue
		}
		// Reserved ports such as LOCAL
		if k.Port > openflow.OFPP_MAX {
			continue
		}
		rx, tx := r.estimator.Rates(k.DPID, k.Port)
		s.Ports = append(s.Ports, PortRate{DPID: k.DPID, Port: k.Port, RxBps: rx, TxBps: tx})
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	for dpid, rtt := range r.latency {
		if !live[dpid] {
			delete(r.latency, dpid)
			continue
		}
		s.Latency[dpid] = float64(rtt) / float64(time.Millisecond)
	}
	r.snapshot = s

	return s
}

// Snapshot returns the view published at the latest tick.
func (r *Collector) Snapshot() Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v := r.snapshot
	v.Ports = make([]PortRate, len(r.snapshot.Ports))
	copy(v.Ports, r.snapshot.Ports)
	v.Latency = make(map[uint64]float64, len(r.snapshot.Latency))
	for k, l := range r.snapshot.Latency {
		v.Latency[k] = l
	}

	return v
}

// Bandwidth returns the current estimate of the port in bits per second.
func (r *Collector) Bandwidth(dpid uint64, port uint32) float64 {
	return r.estimator.Estimate(dpid, port)
}

func (r *Collector) OnPortStats(dpid uint64, stats []openflow.PortStats) {
	now := time.Now()
	for _, v := range stats {
		r.estimator.Record(dpid, v.PortNo, v.RxBytes, v.TxBytes, now)
	}
	logger.Debugf("recorded %v port statistics of DPID=%v", len(stats), dpid)
}

func (r *Collector) OnEchoReply(dpid uint64, rtt time.Duration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.latency[dpid] = rtt
}
