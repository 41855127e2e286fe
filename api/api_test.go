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
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"
	"github.com/vincenzodan/SDN-Network-Slicing/telemetry"

	"github.com/ant0ine/go-json-rest/rest/test"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
)

type fakeSwitch struct {
	id      uint64
	ports   []uint32
	removed int
	err     error
}

func (r *fakeSwitch) ID() uint64 {
	return r.id
}

func (r *fakeSwitch) Ports() []uint32 {
	return r.ports
}

func (r *fakeSwitch) RemoveLearnedFlows() error {
	if r.err != nil {
		return r.err
	}
	r.removed++
	return nil
}

type fakeTelemetry struct {
	snapshot  telemetry.Snapshot
	bandwidth map[uint32]float64
}

func (r *fakeTelemetry) Snapshot() telemetry.Snapshot {
	return r.snapshot
}

func (r *fakeTelemetry) Bandwidth(dpid uint64, port uint32) float64 {
	if dpid != 1 {
		return 0
	}
	return r.bandwidth[port]
}

type testEnv struct {
	server   *Server
	switches []*fakeSwitch
	macs     *learning.Table
	telem    *fakeTelemetry
}

func newTestEnv() *testEnv {
	env := &testEnv{
		switches: []*fakeSwitch{
			{id: 1, ports: []uint32{1, 2, 3, 4}},
			{id: 2},
		},
		macs: learning.NewTable(),
		telem: &fakeTelemetry{
			snapshot: telemetry.Snapshot{
				Ports:   []telemetry.PortRate{{DPID: 1, Port: 3, RxBps: 1000000, TxBps: 2000000}},
				Latency: map[uint64]float64{1: 1.5},
			},
			bandwidth: map[uint32]float64{3: 9000000},
		},
	}
	env.server = &Server{
		Controller: ControllerFunc(func() []Switch {
			result := make([]Switch, 0, len(env.switches))
			for _, v := range env.switches {
				result = append(result, v)
			}
			return result
		}),
		Telemetry: env.telem,
		Selector:  policy.NewSelector(policy.DefaultTable(), 8000000),
		MAC:       env.macs,
	}
	env.server.Reference.DPID = 1
	env.server.Reference.Port = 3

	return env
}

func TestValidate(t *testing.T) {
	s := new(Server)
	if _, err := s.handler(); err == nil {
		t.Fatal("expected an error for an empty server")
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv()
	h, err := env.server.handler()
	if err != nil {
		t.Fatalf("failed to make the handler: %v", err)
	}

	recorded := test.RunRequest(t, h, test.MakeSimpleRequest("GET", "http://localhost/api/v1/stats", nil))
	recorded.CodeIs(200)
	if v := recorded.Recorder.Header().Get("Access-Control-Allow-Origin"); v != "*" {
		t.Fatalf("unexpected CORS header: expected=*, got=%v", v)
	}

	resp := struct {
		Status Status `json:"status"`
		Data   struct {
			Ports   []telemetry.PortRate `json:"ports"`
			Latency map[string]float64   `json:"latency_ms"`
		} `json:"data"`
	}{}
	if err := recorded.DecodeJsonPayload(&resp); err != nil {
		t.Fatalf("failed to decode the response: %v", err)
	}
	if resp.Status != StatusOkay {
		t.Fatalf("unexpected status: expected=%v, got=%v", StatusOkay, resp.Status)
	}
	if diff := cmp.Diff(env.telem.snapshot.Ports, resp.Data.Ports); diff != "" {
		t.Fatalf("unexpected ports (-expected +got):\n%v", diff)
	}
	if diff := cmp.Diff(map[string]float64{"1": 1.5}, resp.Data.Latency); diff != "" {
		t.Fatalf("unexpected latency (-expected +got):\n%v", diff)
	}
}

func TestSwitches(t *testing.T) {
	env := newTestEnv()
	h, err := env.server.handler()
	if err != nil {
		t.Fatalf("failed to make the handler: %v", err)
	}

	recorded := test.RunRequest(t, h, test.MakeSimpleRequest("GET", "http://localhost/api/v1/switch", nil))
	recorded.CodeIs(200)
	resp := struct {
		Data []switchInfo `json:"data"`
	}{}
	if err := recorded.DecodeJsonPayload(&resp); err != nil {
		t.Fatalf("failed to decode the response: %v", err)
	}
	expected := []switchInfo{
		{DPID: 1, Ports: []uint32{1, 2, 3, 4}},
		{DPID: 2, Ports: []uint32{}},
	}
	if diff := cmp.Diff(expected, resp.Data); diff != "" {
		t.Fatalf("unexpected switches (-expected +got):\n%v", diff)
	}
}

func TestPath(t *testing.T) {
	env := newTestEnv()
	h, err := env.server.handler()
	if err != nil {
		t.Fatalf("failed to make the handler: %v", err)
	}

	get := func() pathInfo {
		recorded := test.RunRequest(t, h, test.MakeSimpleRequest("GET", "http://localhost/api/v1/path", nil))
		recorded.CodeIs(200)
		resp := struct {
			Data pathInfo `json:"data"`
		}{}
		if err := recorded.DecodeJsonPayload(&resp); err != nil {
			t.Fatalf("failed to decode the response: %v", err)
		}
		return resp.Data
	}

	v := get()
	if v.Plane != "upper" || v.Bandwidth != 9000000 || v.Threshold != 8000000 {
		t.Fatalf("unexpected path: %+v", v)
	}
	if v.Reference.DPID != 1 || v.Reference.Port != 3 {
		t.Fatalf("unexpected reference link: %+v", v.Reference)
	}

	// Threshold equality selects the lower plane.
	env.telem.bandwidth[3] = 8000000
	if v := get(); v.Plane != "lower" {
		t.Fatalf("unexpected plane: expected=lower, got=%v", v.Plane)
	}
}

func TestMAC(t *testing.T) {
	env := newTestEnv()
	env.macs.Learn(1, policy.MustParseMAC("00:00:00:00:00:03").HardwareAddr(), 3)
	env.macs.Learn(1, policy.MustParseMAC("00:00:00:00:00:01").HardwareAddr(), 1)
	h, err := env.server.handler()
	if err != nil {
		t.Fatalf("failed to make the handler: %v", err)
	}

	recorded := test.RunRequest(t, h, test.MakeSimpleRequest("GET", "http://localhost/api/v1/mac/1", nil))
	recorded.CodeIs(200)
	resp := struct {
		Data []learning.Entry `json:"data"`
	}{}
	if err := recorded.DecodeJsonPayload(&resp); err != nil {
		t.Fatalf("failed to decode the response: %v", err)
	}
	expected := []learning.Entry{
		{MAC: "00:00:00:00:00:01", Port: 1},
		{MAC: "00:00:00:00:00:03", Port: 3},
	}
	if diff := cmp.Diff(expected, resp.Data); diff != "" {
		t.Fatalf("unexpected MAC entries (-expected +got):\n%v", diff)
	}

	recorded = test.RunRequest(t, h, test.MakeSimpleRequest("GET", "http://localhost/api/v1/mac/abc", nil))
	recorded.CodeIs(200)
	status := struct {
		Status Status `json:"status"`
	}{}
	if err := recorded.DecodeJsonPayload(&status); err != nil {
		t.Fatalf("failed to decode the response: %v", err)
	}
	if status.Status != StatusInvalidParameter {
		t.Fatalf("unexpected status: expected=%v, got=%v", StatusInvalidParameter, status.Status)
	}
}

func TestRemove(t *testing.T) {
	env := newTestEnv()
	mac := policy.MustParseMAC("00:00:00:00:00:01").HardwareAddr()
	env.macs.Learn(1, mac, 1)
	env.macs.Learn(2, mac, 1)
	h, err := env.server.handler()
	if err != nil {
		t.Fatalf("failed to make the handler: %v", err)
	}

	post := func(payload interface{}) Status {
		recorded := test.RunRequest(t, h, test.MakeSimpleRequest("POST", "http://localhost/api/v1/remove", payload))
		recorded.CodeIs(200)
		resp := struct {
			Status Status `json:"status"`
		}{}
		if err := recorded.DecodeJsonPayload(&resp); err != nil {
			t.Fatalf("failed to decode the response: %v", err)
		}
		return resp.Status
	}

	if s := post(map[string]interface{}{"dpid": 2}); s != StatusOkay {
		t.Fatalf("unexpected status: expected=%v, got=%v", StatusOkay, s)
	}
	if env.switches[0].removed != 0 || env.switches[1].removed != 1 {
		t.Fatalf("unexpected removal counts: s1=%v, s2=%v", env.switches[0].removed, env.switches[1].removed)
	}
	if _, ok := env.macs.Lookup(2, mac); ok {
		t.Fatal("MAC entries of DPID 2 are not forgotten")
	}
	if _, ok := env.macs.Lookup(1, mac); !ok {
		t.Fatal("MAC entries of DPID 1 are forgotten")
	}

	if s := post(map[string]interface{}{"dpid": 7}); s != StatusNotFound {
		t.Fatalf("unexpected status: expected=%v, got=%v", StatusNotFound, s)
	}

	if s := post(map[string]interface{}{}); s != StatusOkay {
		t.Fatalf("unexpected status: expected=%v, got=%v", StatusOkay, s)
	}
	if env.switches[0].removed != 1 || env.switches[1].removed != 2 {
		t.Fatalf("unexpected removal counts: s1=%v, s2=%v", env.switches[0].removed, env.switches[1].removed)
	}

	env.switches[0].err = errors.New("broken pipe")
	if s := post(map[string]interface{}{"dpid": 1}); s != StatusInternalServerError {
		t.Fatalf("unexpected status: expected=%v, got=%v", StatusInternalServerError, s)
	}
}

func TestRelayMessage(t *testing.T) {
	latency := 2.5
	s := telemetry.Snapshot{
		Ports: []telemetry.PortRate{
			{DPID: 1, Port: 0, RxBps: 1000000},
			{DPID: 1, Port: 3, RxBps: 1000000, TxBps: 3000000},
			{DPID: 2, Port: 1, TxBps: 500000},
			{DPID: 2, Port: 65535, TxBps: 500000},
		},
		Latency: map[uint64]float64{1: latency},
	}
	expected := relayMessage{
		Type: "bandwidth_stats",
		Stats: []relayStat{
			{DPID: 1, Port: 3, RxMbps: 1, TxMbps: 3, Bandwidth: 4, Latency: &latency},
			{DPID: 2, Port: 1, TxMbps: 0.5, Bandwidth: 0.5},
		},
	}
	if diff := cmp.Diff(expected, newRelayMessage(s)); diff != "" {
		t.Fatalf("unexpected relay message (-expected +got):\n%v", diff)
	}
}

func waitClients(t *testing.T, r *Relay, n int) {
	deadline := time.Now().Add(2 * time.Second)
	for r.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("unexpected number of clients: expected=%v, got=%v", n, r.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRelay(t *testing.T) {
	relay := NewRelay()
	server := httptest.NewServer(relay)
	defer server.Close()

	// No clients, nothing to do.
	relay.OnSnapshot(telemetry.Snapshot{})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	waitClients(t, relay, 1)

	relay.OnSnapshot(telemetry.Snapshot{
		Ports:   []telemetry.PortRate{{DPID: 1, Port: 3, RxBps: 2000000, TxBps: 2000000}},
		Latency: map[uint64]float64{1: 1.25},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg := relayMessage{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read the relay message: %v", err)
	}
	latency := 1.25
	expected := relayMessage{
		Type:  "bandwidth_stats",
		Stats: []relayStat{{DPID: 1, Port: 3, RxMbps: 2, TxMbps: 2, Bandwidth: 4, Latency: &latency}},
	}
	if diff := cmp.Diff(expected, msg); diff != "" {
		t.Fatalf("unexpected relay message (-expected +got):\n%v", diff)
	}

	conn.Close()
	waitClients(t, relay, 0)
}

func TestRelaySlowClient(t *testing.T) {
	relay := NewRelay()
	server := httptest.NewServer(relay)
	defer server.Close()

	// This client never reads.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	waitClients(t, relay, 1)

	ports := make([]telemetry.PortRate, 0, 64)
	for i := uint32(1); i <= 64; i++ {
		ports = append(ports, telemetry.PortRate{DPID: 1, Port: i, RxBps: 1000000, TxBps: 1000000})
	}
	s := telemetry.Snapshot{Ports: ports, Latency: map[uint64]float64{1: 1}}

	start := time.Now()
	for i := 0; i < 1000; i++ {
		relay.OnSnapshot(s)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("a slow client blocks the relay: elapsed=%v", elapsed)
	}
}
