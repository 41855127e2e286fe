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

package monitor

import (
	"fmt"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app"

	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("monitor")
)

type Monitor struct {
	app.BaseProcessor
}

func New() *Monitor {
	return &Monitor{}
}

func (r *Monitor) Name() string {
	return "Monitor"
}

func (r *Monitor) String() string {
	return fmt.Sprintf("%v", r.Name())
}

func (r *Monitor) OnDeviceUp(finder network.Finder, device *network.Device) error {
	logger.Warningf("switch device up: DPID=%v", device.ID())
	return r.BaseProcessor.OnDeviceUp(finder, device)
}

func (r *Monitor) OnDeviceDown(finder network.Finder, device *network.Device) error {
	logger.Warningf("switch device down: DPID=%v, # of live devices=%v", device.ID(), len(finder.Devices()))
	return r.BaseProcessor.OnDeviceDown(finder, device)
}
