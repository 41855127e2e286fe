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

package policy

var (
	host1 = MustParseMAC("00:00:00:00:00:01")
	host2 = MustParseMAC("00:00:00:00:00:02")
	host3 = MustParseMAC("00:00:00:00:00:03")
	host4 = MustParseMAC("00:00:00:00:00:04")
)

// DefaultTable returns the policy of the reference fabric: s1 and s4 are the edge
// switches, s2 is on the upper path and s3 is on the lower path. The h1<->h3 slice
// uses the upper path and the h2<->h4 slice uses the lower one.
func DefaultTable() *Table {
	t, err := NewTable(map[uint64]Entry{
		1: {
			Hosts: NewPortSet(1, 2),
			Upper: NewPortSet(3),
			Lower: NewPortSet(4),
			Streaming: []StreamingRule{
				{InPort: 1, OutPort: 3},
				{InPort: 2, OutPort: 3},
			},
			Slices: []SliceRule{
				{Src: host1, Dst: host3, OutPort: 3},
				{Src: host3, Dst: host1, OutPort: 1},
				{Src: host2, Dst: host4, OutPort: 4},
				{Src: host4, Dst: host2, OutPort: 2},
			},
			ARP: []ARPRule{
				{Src: host1, OutPorts: NewPortSet(3)},
				{Src: host3, OutPorts: NewPortSet(1)},
				{Src: host2, OutPorts: NewPortSet(4)},
				{Src: host4, OutPorts: NewPortSet(2)},
			},
		},
		2: {
			Upper: NewPortSet(2),
			Streaming: []StreamingRule{
				{InPort: 1, OutPort: 2},
				{InPort: 2, OutPort: 1},
			},
			Slices: []SliceRule{
				{Src: host1, Dst: host3, OutPort: 2},
				{Src: host3, Dst: host1, OutPort: 1},
			},
			ARP: []ARPRule{
				{Src: host1, OutPorts: NewPortSet(2)},
				{Src: host3, OutPorts: NewPortSet(1)},
			},
		},
		3: {
			Lower: NewPortSet(2),
			Slices: []SliceRule{
				{Src: host2, Dst: host4, OutPort: 2},
				{Src: host4, Dst: host2, OutPort: 1},
			},
			ARP: []ARPRule{
				{Src: host2, OutPorts: NewPortSet(2)},
				{Src: host4, OutPorts: NewPortSet(1)},
			},
		},
		4: {
			Hosts: NewPortSet(3, 4),
			Upper: NewPortSet(1),
			Lower: NewPortSet(2),
			Streaming: []StreamingRule{
				{InPort: 3, OutPort: 1},
				{InPort: 4, OutPort: 1},
			},
			Slices: []SliceRule{
				{Src: host1, Dst: host3, OutPort: 3},
				{Src: host3, Dst: host1, OutPort: 1},
				{Src: host2, Dst: host4, OutPort: 4},
				{Src: host4, Dst: host2, OutPort: 2},
			},
			ARP: []ARPRule{
				{Src: host1, OutPorts: NewPortSet(3)},
				{Src: host3, OutPorts: NewPortSet(1)},
				{Src: host2, OutPorts: NewPortSet(4)},
				{Src: host4, OutPorts: NewPortSet(2)},
			},
		},
	})
	if err != nil {
		panic(err)
	}

	return t
}
