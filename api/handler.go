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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vincenzodan/SDN-Network-Slicing/telemetry"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/davecgh/go-spew/spew"
)

func (r *Server) stats(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("stats request from %v", req.RemoteAddr)

	snapshot := r.Telemetry.Snapshot()
	if snapshot.Ports == nil {
		snapshot.Ports = []telemetry.PortRate{}
	}
	w.WriteJson(&Response{Status: StatusOkay, Data: snapshot})
}

type switchInfo struct {
	DPID  uint64   `json:"dpid"`
	Ports []uint32 `json:"ports"`
}

func (r *Server) switches(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("switch list request from %v", req.RemoteAddr)

	result := []switchInfo{}
	for _, v := range r.Controller.Switches() {
		ports := v.Ports()
		if ports == nil {
			ports = []uint32{}
		}
		result = append(result, switchInfo{DPID: v.ID(), Ports: ports})
	}
	w.WriteJson(&Response{Status: StatusOkay, Data: result})
}

type pathInfo struct {
	Reference struct {
		DPID uint64 `json:"dpid"`
		Port uint32 `json:"port"`
	} `json:"reference"`
	Bandwidth float64 `json:"bandwidth_bps"`
	Threshold float64 `json:"threshold_bps"`
	Plane     string  `json:"plane"`
}

// path reports the plane that non-streaming traffic would take right now.
func (r *Server) path(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("path request from %v", req.RemoteAddr)

	v := pathInfo{}
	v.Reference.DPID = r.Reference.DPID
	v.Reference.Port = r.Reference.Port
	v.Bandwidth = r.Telemetry.Bandwidth(r.Reference.DPID, r.Reference.Port)
	v.Threshold = r.Selector.Threshold()
	v.Plane = r.Selector.Plane(false, v.Bandwidth).String()
	w.WriteJson(&Response{Status: StatusOkay, Data: v})
}

func (r *Server) mac(w rest.ResponseWriter, req *rest.Request) {
	dpid, err := strconv.ParseUint(req.PathParam("dpid"), 0, 64)
	if err != nil {
		w.WriteJson(&Response{Status: StatusInvalidParameter, Message: fmt.Sprintf("invalid DPID: %v", req.PathParam("dpid"))})
		return
	}
	logger.Debugf("MAC table request from %v: DPID=%v", req.RemoteAddr, dpid)

	w.WriteJson(&Response{Status: StatusOkay, Data: r.MAC.Entries(dpid)})
}

func (r *Server) remove(w rest.ResponseWriter, req *rest.Request) {
	p := new(removeParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(&Response{Status: StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("remove request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	found := false
	for _, sw := range r.Controller.Switches() {
		if p.DPID != nil && *p.DPID != sw.ID() {
			continue
		}
		found = true

		r.MAC.Forget(sw.ID())
		if err := sw.RemoveLearnedFlows(); err != nil {
			w.WriteJson(&Response{Status: StatusInternalServerError, Message: err.Error()})
			return
		}
		logger.Infof("removed the learned flows and MAC addresses: DPID=%v", sw.ID())
	}
	if p.DPID != nil && !found {
		w.WriteJson(&Response{Status: StatusNotFound, Message: fmt.Sprintf("unknown switch: DPID=%v", *p.DPID)})
		return
	}

	w.WriteJson(&Response{Status: StatusOkay})
}

type removeParam struct {
	// DPID is nil to remove the flows of all the switches.
	DPID *uint64
}

func (r *removeParam) UnmarshalJSON(data []byte) error {
	v := struct {
		DPID *uint64 `json:"dpid"`
	}{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.DPID = v.DPID

	return nil
}
