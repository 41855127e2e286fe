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

package openflow

import (
	"sync/atomic"
)

// Factory creates OpenFlow 1.3 messages whose transaction IDs increase monotonically.
type Factory struct {
	xid uint32
}

func NewFactory() *Factory {
	return new(Factory)
}

func (r *Factory) getTransactionID() uint32 {
	return atomic.AddUint32(&r.xid, 1)
}

func (r *Factory) NewHello() *Hello {
	return &Hello{Message: NewMessage(OFPT_HELLO, r.getTransactionID())}
}

func (r *Factory) NewError(class, code uint16, data []byte) *Error {
	return &Error{
		Message: NewMessage(OFPT_ERROR, r.getTransactionID()),
		Class:   class,
		Code:    code,
		Data:    data,
	}
}

func (r *Factory) NewEchoRequest() *Echo {
	return &Echo{Message: NewMessage(OFPT_ECHO_REQUEST, r.getTransactionID())}
}

func (r *Factory) NewEchoReply() *Echo {
	return &Echo{Message: NewMessage(OFPT_ECHO_REPLY, r.getTransactionID())}
}

func (r *Factory) NewFeaturesRequest() *FeaturesRequest {
	return &FeaturesRequest{Message: NewMessage(OFPT_FEATURES_REQUEST, r.getTransactionID())}
}

func (r *Factory) NewSetConfig() *SetConfig {
	return &SetConfig{Message: NewMessage(OFPT_SET_CONFIG, r.getTransactionID())}
}

func (r *Factory) NewBarrierRequest() *Barrier {
	return &Barrier{Message: NewMessage(OFPT_BARRIER_REQUEST, r.getTransactionID())}
}

func (r *Factory) NewFlowMod(cmd uint8) *FlowMod {
	return NewFlowMod(r.getTransactionID(), cmd)
}

func (r *Factory) NewPacketOut() *PacketOut {
	return &PacketOut{
		Message:  NewMessage(OFPT_PACKET_OUT, r.getTransactionID()),
		BufferID: OFP_NO_BUFFER,
		InPort:   OFPP_CONTROLLER,
	}
}

func (r *Factory) NewPortStatsRequest(port uint32) *PortStatsRequest {
	return &PortStatsRequest{
		Message: NewMessage(OFPT_MULTIPART_REQUEST, r.getTransactionID()),
		PortNo:  port,
	}
}
