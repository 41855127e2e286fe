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

package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/telemetry"

	"github.com/gorilla/websocket"
)

const (
	relayWriteTimeout = 2 * time.Second
	relayQueueSize    = 4
	// Dashboards only chart the port numbers in this range.
	relayMaxPort = 65534
)

// Relay pushes every telemetry snapshot to the connected websocket clients.
type Relay struct {
	upgrader websocket.Upgrader

	mutex   sync.Mutex
	clients map[*relayClient]bool
}

// relayClient owns a websocket connection. Only its writer goroutine writes to conn.
type relayClient struct {
	conn  *websocket.Conn
	queue chan relayMessage
}

func NewRelay() *Relay {
	return &Relay{
		upgrader: websocket.Upgrader{
			// Dashboards are served from anywhere.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*relayClient]bool),
	}
}

type relayMessage struct {
	Type  string      `json:"type"`
	Stats []relayStat `json:"stats"`
}

type relayStat struct {
	DPID      uint64   `json:"dpid"`
	Port      uint32   `json:"port_no"`
	RxMbps    float64  `json:"rx_mbps"`
	TxMbps    float64  `json:"tx_mbps"`
	Bandwidth float64  `json:"bandwidth_mbps"`
	Latency   *float64 `json:"latency_ms"` // null until the first echo reply
}

func newRelayMessage(s telemetry.Snapshot) relayMessage {
	msg := relayMessage{Type: "bandwidth_stats", Stats: []relayStat{}}
	for _, v := range s.Ports {
		if v.Port < 1 || v.Port > relayMaxPort {
			continue
		}
		stat := relayStat{
			DPID:      v.DPID,
			Port:      v.Port,
			RxMbps:    v.RxBps / 1000000,
			TxMbps:    v.TxBps / 1000000,
			Bandwidth: v.Bps() / 1000000,
		}
		if latency, ok := s.Latency[v.DPID]; ok {
			stat.Latency = &latency
		}
		msg.Stats = append(msg.Stats, stat)
	}

	return msg
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Errorf("failed to upgrade the websocket connection from %v: %v", req.RemoteAddr, err)
		return
	}
	c := &relayClient{conn: conn, queue: make(chan relayMessage, relayQueueSize)}
	r.add(c)
	logger.Infof("new websocket client: %v", conn.RemoteAddr())
	go c.write()

	// Drain the client messages to notice the disconnection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.remove(c)
	logger.Infof("websocket client disconnected: %v", conn.RemoteAddr())
}

func (r *relayClient) write() {
	for msg := range r.queue {
		r.conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
		if err := r.conn.WriteJSON(msg); err != nil {
			logger.Infof("dropping websocket client %v: %v", r.conn.RemoteAddr(), err)
			// The reader loop notices the closed connection and removes this client.
			r.conn.Close()
			return
		}
	}
}

func (r *Relay) add(c *relayClient) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.clients[c] = true
}

func (r *Relay) remove(c *relayClient) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	close(c.queue)
	c.conn.Close()
}

// Clients returns the number of the connected clients.
func (r *Relay) Clients() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.clients)
}

// OnSnapshot queues the snapshot to every client without blocking. A client whose queue is
// full misses this snapshot.
func (r *Relay) OnSnapshot(s telemetry.Snapshot) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.clients) == 0 {
		return
	}

	msg := newRelayMessage(s)
	for c := range r.clients {
		select {
		case c.queue <- msg:
		default:
			logger.Debugf("websocket client %v is too slow, skipping a snapshot", c.conn.RemoteAddr())
		}
	}
}

func (r *Relay) Serve(port uint16) error {
	addr := fmt.Sprintf(":%v", port)
	logger.Infof("websocket relay listening on %v", addr)

	return http.ListenAndServe(addr, r)
}
