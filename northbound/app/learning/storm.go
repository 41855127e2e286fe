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
	"sync"

	"golang.org/x/time/rate"
)

// StormController limits the number of floods per second on each switch.
type StormController struct {
	mutex    sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[uint64]*rate.Limiter
}

// NewStormController returns a controller that allows max floods per second on each
// switch. Zero means unlimited.
func NewStormController(max uint) *StormController {
	v := &StormController{
		limit:    rate.Inf,
		limiters: make(map[uint64]*rate.Limiter),
	}
	if max > 0 {
		v.limit = rate.Limit(max)
		v.burst = int(max)
	}

	return v
}

// Allow reports whether a flood on the switch is allowed now.
func (r *StormController) Allow(dpid uint64) bool {
	if r.limit == rate.Inf {
		return true
	}

	r.mutex.Lock()
	l, ok := r.limiters[dpid]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[dpid] = l
	}
	r.mutex.Unlock()

	if !l.Allow() {
		logger.Infof("too many floods on DPID=%v: flood is denied to avoid the broadcast storm!", dpid)
		return false
	}

	return true
}
