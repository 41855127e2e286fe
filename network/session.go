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

package network

import (
	"context"
	"encoding"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/openflow"
	"github.com/vincenzodan/SDN-Network-Slicing/openflow/transceiver"

	"github.com/pkg/errors"
)

type session struct {
	device      *Device
	transceiver *transceiver.Transceiver
	watcher     watcher
	finder      Finder
	listener    EventListener
	stats       StatsListener
	// Accessed only by the goroutine that executes Run.
	registered bool
	ctx        context.Context
	// A cancel function to disconnect this session.
	canceller context.CancelFunc
}

type sessionConfig struct {
	stream   *transceiver.Stream
	watcher  watcher
	finder   Finder
	listener EventListener
	stats    StatsListener
}

func checkParam(c sessionConfig) {
	if c.stream == nil {
		panic("Stream is nil")
	}
	if c.watcher == nil {
		panic("Watcher is nil")
	}
	if c.finder == nil {
		panic("Finder is nil")
	}
	if c.listener == nil {
		panic("Listener is nil")
	}
	if c.stats == nil {
		panic("Stats listener is nil")
	}
}

func newSession(ctx context.Context, c sessionConfig) *session {
	checkParam(c)

	v := new(session)
	v.watcher = c.watcher
	v.finder = c.finder
	v.listener = c.listener
	v.stats = c.stats
	v.ctx, v.canceller = context.WithCancel(ctx)
	v.device = newDevice(v)
	v.transceiver = transceiver.NewTransceiver(c.stream, v)

	return v
}

func (r *session) factory() *openflow.Factory {
	return r.transceiver.Factory()
}

func (r *session) Write(msg encoding.BinaryMarshaler) error {
	return r.transceiver.Write(msg)
}

func (r *session) ping() error {
	return r.transceiver.Ping()
}

func (r *session) close() {
	r.canceller()
}

func (r *session) OnHello(f *openflow.Factory, w transceiver.Writer, v *openflow.Hello) error {
	logger.Debugf("HELLO (ver=%v) is received", v.Version())

	// Ignore duplicated HELLO messages
	if r.registered {
		return nil
	}

	if err := w.Write(f.NewHello()); err != nil {
		return errors.Wrap(err, "failed to send HELLO")
	}
	if err := w.Write(f.NewFeaturesRequest()); err != nil {
		return errors.Wrap(err, "failed to send FEATURES_REQUEST")
	}
	config := f.NewSetConfig()
	config.Flags = openflow.OFPC_FRAG_NORMAL
	config.MissSendLength = 0xFFFF
	if err := w.Write(config); err != nil {
		return errors.Wrap(err, "failed to send SET_CONFIG")
	}
	// Wildcard match on all tables
	flowmod := f.NewFlowMod(openflow.OFPFC_DELETE)
	flowmod.TableID = openflow.OFPTT_ALL
	if err := w.Write(flowmod); err != nil {
		return errors.Wrap(err, "failed to send FLOW_MOD to remove all flows")
	}
	// Make sure that the installed flows are removed before the table-miss entry is installed
	if err := w.Write(f.NewBarrierRequest()); err != nil {
		return errors.Wrap(err, "failed to send BARRIER_REQUEST")
	}

	return nil
}

func (r *session) OnError(f *openflow.Factory, w transceiver.Writer, v *openflow.Error) error {
	// Is this the CHECK_OVERLAP error?
	if v.Class == openflow.OFPET_FLOW_MOD_FAILED && v.Code == openflow.OFPFMFC_OVERLAP {
		// Ignore this CHECK_OVERLAP error
		logger.Debug("FLOW_MOD is overlapped")
		return nil
	}
	logger.Errorf("ERROR from DPID=%v: %v", r.device.ID(), v)

	return nil
}

func (r *session) OnFeaturesReply(f *openflow.Factory, w transceiver.Writer, v *openflow.FeaturesReply) error {
	logger.Debugf("FEATURES_REPLY (DPID=%v, NumBufs=%v, NumTables=%v)", v.DPID, v.NumBuffers, v.NumTables)

	// Additional FEATURES_REPLY does not change the identity of this device.
	if r.registered {
		return nil
	}

	r.device.setFeatures(Features{
		DPID:       v.DPID,
		NumBuffers: v.NumBuffers,
		NumTables:  v.NumTables,
	})
	if err := r.device.InstallDefaultRule(); err != nil {
		return errors.Wrap(err, "failed to install the table-miss flow")
	}
	if err := r.listener.OnDeviceUp(r.finder, r.device); err != nil {
		return errors.Wrap(err, "failed to initialize the device")
	}
	// A reconnected switch replaces its previous session.
	r.watcher.DeviceAdded(r.device)
	r.registered = true

	return nil
}

func (r *session) OnPortStatsReply(f *openflow.Factory, w transceiver.Writer, v *openflow.PortStatsReply) error {
	// Ignore the replies of a device that is not live any more.
	if !r.registered || r.finder.Device(r.device.ID()) != r.device {
		logger.Debugf("ignoring PORT_STATS_REPLY from a stale session (DPID=%v)", r.device.ID())
		return nil
	}

	r.device.updatePorts(v.Stats)
	r.stats.OnPortStats(r.device.ID(), v.Stats)

	return nil
}

func (r *session) OnPacketIn(f *openflow.Factory, w transceiver.Writer, v *openflow.PacketIn) error {
	if !r.registered {
		logger.Debug("ignoring PACKET_IN on a non-registered session")
		return nil
	}
	logger.Debugf("PACKET_IN is received (device=%v, inport=%v, reason=%v, tableID=%v, cookie=%v)",
		r.device.ID(), v.InPort, v.Reason, v.TableID, v.Cookie)

	packet := &Packet{
		InPort:   v.InPort,
		BufferID: v.BufferID,
		Data:     v.Data,
	}
	// A failure of an application does not disconnect the switch.
	if err := r.listener.OnPacketIn(r.finder, r.device, packet); err != nil {
		logger.Errorf("failed to handle PACKET_IN (DPID=%v, inport=%v): %v", r.device.ID(), v.InPort, err)
	}

	return nil
}

func (r *session) OnEchoReply(latency time.Duration) {
	if !r.device.isValid() {
		return
	}
	r.stats.OnEchoReply(r.device.ID(), latency)
}

// Run blocks until the connection is closed or the session is canceled.
func (r *session) Run() {
	defer r.canceller()

	if err := r.transceiver.Run(r.ctx); err != nil {
		logger.Errorf("openflow transceiver is unexpectedly closed: %v", err)
	}
	logger.Infof("disconnected device (DPID=%v)", r.device.ID())

	r.transceiver.Close()
	r.device.Close()
	if !r.registered {
		return
	}
	if !r.watcher.DeviceRemoved(r.device) {
		// Replaced by a new session of the same switch.
		return
	}
	if err := r.listener.OnDeviceDown(r.finder, r.device); err != nil {
		logger.Errorf("OnDeviceDown: %v", err)
	}
}
