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
	"fmt"
	"net/http"

	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"
	"github.com/vincenzodan/SDN-Network-Slicing/telemetry"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("api")
)

type Server struct {
	Port uint16
	TLS  struct {
		Cert string // Path for a TLS certification file.
		Key  string // Path for a TLS private key file.
	}
	Controller Controller
	Telemetry  Telemetry
	Selector   Selector
	MAC        MACTable
	// Reference link whose bandwidth drives the plane selection.
	Reference struct {
		DPID uint64
		Port uint32
	}
}

type Controller interface {
	Switches() []Switch
}

type ControllerFunc func() []Switch

func (r ControllerFunc) Switches() []Switch {
	return r()
}

type Switch interface {
	ID() uint64
	Ports() []uint32
	RemoveLearnedFlows() error
}

type Telemetry interface {
	Snapshot() telemetry.Snapshot
	Bandwidth(dpid uint64, port uint32) float64
}

type Selector interface {
	Threshold() float64
	Plane(streaming bool, bps float64) policy.Plane
}

type MACTable interface {
	Entries(dpid uint64) []learning.Entry
	Forget(dpid uint64)
}

func (r *Server) validate() error {
	if r.Controller == nil {
		return errors.New("nil controller")
	}
	if r.Telemetry == nil {
		return errors.New("nil telemetry")
	}
	if r.Selector == nil {
		return errors.New("nil selector")
	}
	if r.MAC == nil {
		return errors.New("nil MAC table")
	}

	return nil
}

func (r *Server) handler() (http.Handler, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	api := rest.NewApi()
	// Middleware to set the CORS header.
	api.Use(rest.MiddlewareSimple(func(handler rest.HandlerFunc) rest.HandlerFunc {
		return func(writer rest.ResponseWriter, request *rest.Request) {
			writer.Header().Set("Access-Control-Allow-Origin", "*")
			handler(writer, request)
		}
	}))
	router, err := rest.MakeRouter(
		rest.Get("/api/v1/stats", r.stats),
		rest.Get("/api/v1/switch", r.switches),
		rest.Get("/api/v1/path", r.path),
		rest.Get("/api/v1/mac/:dpid", r.mac),
		rest.Post("/api/v1/remove", r.remove),
	)
	if err != nil {
		return nil, err
	}
	api.SetApp(router)

	return api.MakeHandler(), nil
}

func (r *Server) Serve() error {
	handler, err := r.handler()
	if err != nil {
		return err
	}

	// Listen on all interfaces.
	addr := fmt.Sprintf(":%v", r.Port)
	logger.Infof("REST API listening on %v", addr)
	if r.TLS.Cert != "" && r.TLS.Key != "" {
		err = http.ListenAndServeTLS(addr, r.TLS.Cert, r.TLS.Key, handler)
	} else {
		err = http.ListenAndServe(addr, handler)
	}

	return err
}
