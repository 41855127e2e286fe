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
	"net"

	"github.com/vincenzodan/SDN-Network-Slicing/policy"
)

// Flood returns the output ports of a controlled flood: the host ports and then the
// link ports, each in ascending order, without the ingress port.
func Flood(hosts, links policy.PortSet, ingress uint32) []uint32 {
	v := make([]uint32, 0, len(hosts)+len(links))
	for _, set := range []policy.PortSet{hosts, links} {
		for _, p := range policy.NewPortSet(set...) {
			if p == ingress {
				continue
			}
			v = append(v, p)
		}
	}

	return v
}

// Forward returns the learned port of dst as the only output, or a controlled flood
// over hosts and links if dst is unknown.
func Forward(t *Table, dpid uint64, dst net.HardwareAddr, hosts, links policy.PortSet, ingress uint32) (ports []uint32, flood bool) {
	if port, ok := t.Lookup(dpid, dst); ok {
		return []uint32{port}, false
	}

	return Flood(hosts, links, ingress), true
}
