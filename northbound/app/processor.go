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

package app

import (
	"github.com/vincenzodan/SDN-Network-Slicing/network"
)

// Processor should prepare to be executed by multiple goroutines simultaneously.
type Processor interface {
	network.EventListener
	Init() error
	// Name returns the application name that is globally unique
	Name() string
	Next() (next Processor, ok bool)
	SetNext(Processor)
}

type BaseProcessor struct {
	next Processor
}

func (r *BaseProcessor) Init() error {
	return nil
}

func (r *BaseProcessor) Name() string {
	return "BaseProcessor"
}

func (r *BaseProcessor) OnPacketIn(finder network.Finder, device *network.Device, packet *network.Packet) error {
	// Do nothing and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnPacketIn(finder, device, packet)
}

func (r *BaseProcessor) OnDeviceUp(finder network.Finder, device *network.Device) error {
	// Do nothing and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnDeviceUp(finder, device)
}

func (r *BaseProcessor) OnDeviceDown(finder network.Finder, device *network.Device) error {
	// Do nothing and execute the next processor if it exists
	next, ok := r.Next()
	if !ok {
		return nil
	}
	return next.OnDeviceDown(finder, device)
}

func (r *BaseProcessor) Next() (next Processor, ok bool) {
	if r.next != nil {
		return r.next, true
	}

	return nil, false
}

func (r *BaseProcessor) SetNext(next Processor) {
	r.next = next
}
