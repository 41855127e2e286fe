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

package northbound

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/dynamic"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/monitor"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/service"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/topology"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("northbound")
)

// Only one of the slicing applications can forward the packets.
var slicingApps = []string{"DYNAMIC", "SERVICE", "TOPOLOGY"}

type EventSender interface {
	SetEventListener(network.EventListener)
}

type application struct {
	instance app.Processor
	enabled  bool
}

type Manager struct {
	mutex      sync.Mutex
	apps       map[string]*application // Registered applications
	head, tail app.Processor
}

func NewManager(macs *learning.Table, selector *policy.Selector, bandwidth dynamic.Bandwidth) *Manager {
	v := &Manager{
		apps: make(map[string]*application),
	}
	// Registering north-bound applications
	v.register(monitor.New())
	v.register(dynamic.New(macs, selector, bandwidth))
	v.register(service.New(macs, selector.Table()))
	v.register(topology.New(selector.Table()))

	return v
}

func (r *Manager) register(app app.Processor) {
	r.apps[strings.ToUpper(app.Name())] = &application{
		instance: app,
		enabled:  false,
	}
}

// XXX: Caller should lock the mutex before they call this function
func (r *Manager) checkConflicts(appName string) error {
	name := strings.ToUpper(appName)
	if !isSlicingApp(name) {
		return nil
	}

	for _, v := range slicingApps {
		if v == name {
			continue
		}
		if app, ok := r.apps[v]; ok && app.enabled {
			return fmt.Errorf("%v application conflicts with %v application", appName, app.instance.Name())
		}
	}

	return nil
}

func isSlicingApp(name string) bool {
	for _, v := range slicingApps {
		if v == name {
			return true
		}
	}

	return false
}

func (r *Manager) Enable(appName string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	logger.Debugf("enabling %v application..", appName)
	v, ok := r.apps[strings.ToUpper(appName)]
	if !ok {
		return fmt.Errorf("unknown application: %v", appName)
	}
	if v.enabled {
		return fmt.Errorf("already enabled application: %v", appName)
	}
	app := v.instance

	if err := r.checkConflicts(appName); err != nil {
		return errors.Wrap(err, "checking conflicts")
	}
	if err := app.Init(); err != nil {
		return errors.Wrap(err, "initializing application")
	}
	v.enabled = true
	logger.Debugf("enabled %v application..", appName)

	if r.head == nil {
		r.head = app
		r.tail = app
		return nil
	}
	r.tail.SetNext(app)
	r.tail = app

	return nil
}

func (r *Manager) AddEventSender(sender EventSender) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.head == nil {
		return
	}
	sender.SetEventListener(r.head)
}

func (r *Manager) String() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var buf bytes.Buffer
	app := r.head
	for app != nil {
		buf.WriteString(fmt.Sprintf("%v\n", app))
		next, ok := app.Next()
		if !ok {
			break
		}
		app = next
	}

	return buf.String()
}
