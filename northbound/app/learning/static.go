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
	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"

	"github.com/pkg/errors"
)

// RuleInstaller is the part of network.Device that installs flow entries.
type RuleInstaller interface {
	ID() uint64
	InstallRule(network.Rule) error
}

// InstallStreamingRules pins the streaming flows of the switch to the output ports of rules.
func InstallStreamingRules(d RuleInstaller, rules []policy.StreamingRule, udpPort uint16) error {
	for _, v := range rules {
		rule, err := network.NewStreamingRule(v.InPort, udpPort, v.OutPort)
		if err != nil {
			return err
		}
		if err := d.InstallRule(rule); err != nil {
			return errors.Wrapf(err, "failed to install the streaming rule (in_port=%v)", v.InPort)
		}
	}
	logger.Infof("installed %v streaming rules on DPID=%v", len(rules), d.ID())

	return nil
}
