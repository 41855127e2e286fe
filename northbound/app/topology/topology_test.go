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

package topology

import (
	"testing"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"

	"github.com/google/go-cmp/cmp"
)

type dummyInstaller struct {
	id    uint64
	rules []network.Rule
}

func (r *dummyInstaller) ID() uint64 {
	return r.id
}

func (r *dummyInstaller) InstallRule(rule network.Rule) error {
	r.rules = append(r.rules, rule)
	return nil
}

type summary struct {
	Priority uint16
	Src      string
	Dst      string
	Outputs  []uint32
}

func summarize(rules []network.Rule) []summary {
	v := make([]summary, len(rules))
	for i, r := range rules {
		_, src := r.Match.SrcMAC()
		_, dst := r.Match.DstMAC()
		v[i] = summary{Priority: r.Priority, Src: src.String(), Dst: dst.String(), Outputs: r.Outputs}
	}

	return v
}

func TestInstallSlices(t *testing.T) {
	app := New(policy.DefaultTable())

	d := &dummyInstaller{id: 2}
	if err := app.installSlices(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []summary{
		{Priority: network.PrioritySliceMAC, Src: "00:00:00:00:00:01", Dst: "00:00:00:00:00:03", Outputs: []uint32{2}},
		{Priority: network.PrioritySliceMAC, Src: "00:00:00:00:00:03", Dst: "00:00:00:00:00:01", Outputs: []uint32{1}},
		{Priority: network.PrioritySliceARP, Src: "00:00:00:00:00:01", Dst: "ff:ff:ff:ff:ff:ff", Outputs: []uint32{2}},
		{Priority: network.PrioritySliceARP, Src: "00:00:00:00:00:03", Dst: "ff:ff:ff:ff:ff:ff", Outputs: []uint32{1}},
	}
	if diff := cmp.Diff(expected, summarize(d.rules)); diff != "" {
		t.Fatalf("unexpected rules (-expected +got):\n%v", diff)
	}

	for _, v := range []struct {
		DPID  uint64
		Count int
	}{{1, 8}, {3, 4}, {4, 8}, {9, 0}} {
		d := &dummyInstaller{id: v.DPID}
		if err := app.installSlices(d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(d.rules) != v.Count {
			t.Fatalf("unexpected number of rules on s%v: expected=%v, got=%v", v.DPID, v.Count, len(d.rules))
		}
	}
}
