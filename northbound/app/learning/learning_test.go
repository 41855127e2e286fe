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

package learning

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"

	"github.com/google/go-cmp/cmp"
)

var (
	h1 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	h3 = net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x03}
)

func TestLastWriteWins(t *testing.T) {
	table := NewTable()
	table.Learn(1, h1, 1)
	table.Learn(1, h1, 2)

	port, ok := table.Lookup(1, h1)
	if !ok || port != 2 {
		t.Fatalf("unexpected lookup result: expected=(2, true), got=(%v, %v)", port, ok)
	}
	if _, ok := table.Lookup(2, h1); ok {
		t.Fatal("MAC learned on s1 is found on s2")
	}

	table.Learn(1, h3, 4)
	expected := []Entry{{MAC: "00:00:00:00:00:01", Port: 2}, {MAC: "00:00:00:00:00:03", Port: 4}}
	if diff := cmp.Diff(expected, table.Entries(1)); diff != "" {
		t.Fatalf("unexpected entries (-expected +got):\n%v", diff)
	}

	table.Forget(1)
	if _, ok := table.Lookup(1, h1); ok {
		t.Fatal("MAC is found after Forget")
	}
}

func TestFlood(t *testing.T) {
	samples := []struct {
		Hosts    policy.PortSet
		Links    policy.PortSet
		Ingress  uint32
		Expected []uint32
	}{
		{policy.PortSet{1, 2}, policy.PortSet{3}, 1, []uint32{2, 3}},
		{policy.PortSet{1, 2}, policy.PortSet{4}, 4, []uint32{1, 2}},
		{policy.PortSet{3, 4}, policy.PortSet{1}, 3, []uint32{4, 1}},
		{policy.PortSet{}, policy.PortSet{2}, 1, []uint32{2}},
		{policy.PortSet{}, policy.PortSet{2}, 2, []uint32{}},
		{nil, nil, 1, []uint32{}},
	}
	for _, v := range samples {
		got := Flood(v.Hosts, v.Links, v.Ingress)
		if diff := cmp.Diff(v.Expected, got); diff != "" {
			t.Fatalf("unexpected flood ports for hosts=%v, links=%v, ingress=%v (-expected +got):\n%v", v.Hosts, v.Links, v.Ingress, diff)
		}
		for _, p := range got {
			if p == v.Ingress {
				t.Fatalf("flood includes the ingress port %v", p)
			}
		}
	}
}

func TestForward(t *testing.T) {
	table := NewTable()
	hosts, links := policy.NewPortSet(1, 2), policy.NewPortSet(3)

	ports, flood := Forward(table, 1, h3, hosts, links, 1)
	if !flood || !cmp.Equal([]uint32{2, 3}, ports) {
		t.Fatalf("unexpected forwarding of an unknown destination: ports=%v, flood=%v", ports, flood)
	}

	table.Learn(1, h3, 3)
	ports, flood = Forward(table, 1, h3, hosts, links, 1)
	if flood || !cmp.Equal([]uint32{3}, ports) {
		t.Fatalf("unexpected forwarding of a known destination: ports=%v, flood=%v", ports, flood)
	}
}

func TestStorm(t *testing.T) {
	max := uint(100)
	storm := NewStormController(max)
	allowed := 0
	for i := uint(0); i < max+10; i++ {
		if storm.Allow(1) {
			allowed++
		}
	}
	// The burst may be refilled slightly while the loop runs.
	if allowed < int(max) || allowed > int(max)+5 {
		t.Fatalf("unexpected number of allowed floods: expected=%v, got=%v", max, allowed)
	}
	// Switches are independent.
	if !storm.Allow(2) {
		t.Fatal("flood on another switch is denied")
	}

	time.Sleep(100 * time.Millisecond)
	if !storm.Allow(1) {
		t.Fatal("flood is still denied after the bucket is refilled")
	}
}

func TestUnlimitedStorm(t *testing.T) {
	storm := NewStormController(0)
	for i := 0; i < 10000; i++ {
		if !storm.Allow(1) {
			t.Fatalf("flood is denied at %v", i)
		}
	}
}

type dummyInstaller struct {
	rules []network.Rule
	err   error
}

func (r *dummyInstaller) ID() uint64 {
	return 1
}

func (r *dummyInstaller) InstallRule(rule network.Rule) error {
	if r.err != nil {
		return r.err
	}
	r.rules = append(r.rules, rule)
	return nil
}

func TestInstallStreamingRules(t *testing.T) {
	d := new(dummyInstaller)
	rules := policy.DefaultTable().Entry(1).Streaming
	if err := InstallStreamingRules(d, rules, 9999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.rules) != len(rules) {
		t.Fatalf("unexpected number of rules: expected=%v, got=%v", len(rules), len(d.rules))
	}
	for i, v := range d.rules {
		if v.Priority != network.PriorityStreaming {
			t.Fatalf("unexpected priority: expected=%v, got=%v", network.PriorityStreaming, v.Priority)
		}
		if diff := cmp.Diff([]uint32{rules[i].OutPort}, v.Outputs); diff != "" {
			t.Fatalf("unexpected outputs (-expected +got):\n%v", diff)
		}
	}

	d = &dummyInstaller{err: errors.New("broken pipe")}
	if err := InstallStreamingRules(d, rules, 9999); err == nil {
		t.Fatal("expected an error from the installer")
	}
}
