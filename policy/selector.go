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

import (
	"fmt"
)

// Plane is one of the two disjoint paths of the fabric.
type Plane int

const (
	// Upper is the low latency, low capacity path.
	Upper Plane = iota
	// Lower is the high capacity path.
	Lower
)

func (r Plane) String() string {
	switch r {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	default:
		return fmt.Sprintf("Plane(%d)", int(r))
	}
}

// Selector chooses the path of a frame from its class and the utilisation of the reference link.
type Selector struct {
	table     *Table
	threshold float64
}

func NewSelector(table *Table, threshold float64) *Selector {
	if table == nil {
		panic("nil policy table")
	}

	return &Selector{table: table, threshold: threshold}
}

func (r *Selector) Threshold() float64 {
	return r.threshold
}

func (r *Selector) Table() *Table {
	return r.table
}

// Plane returns Upper for streaming flows and while the reference link carries less
// than the threshold. Otherwise it returns Lower.
func (r *Selector) Plane(streaming bool, bps float64) Plane {
	if streaming || bps < r.threshold {
		return Upper
	}

	return Lower
}

// Select returns the path ports of the switch that the frame should use.
func (r *Selector) Select(dpid uint64, streaming bool, bps float64) PortSet {
	entry := r.table.Entry(dpid)
	if r.Plane(streaming, bps) == Upper {
		return entry.Upper
	}

	return entry.Lower
}
