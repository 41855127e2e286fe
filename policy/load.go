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
	"net"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type document struct {
	Switches []struct {
		DPID  uint64 `yaml:"dpid"`
		Entry `yaml:",inline"`
	} `yaml:"switches"`
}

// Parse decodes a YAML policy document such as:
//
//	switches:
//	  - dpid: 1
//	    hosts: [1, 2]
//	    upper: [3]
//	    lower: [4]
//	    streaming:
//	      - {in_port: 1, out_port: 3}
//	    slices:
//	      - {src: "00:00:00:00:00:01", dst: "00:00:00:00:00:03", out_port: 3}
//	    arp:
//	      - {src: "00:00:00:00:00:01", out_ports: [3]}
func Parse(data []byte) (*Table, error) {
	doc := new(document)
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode the policy document")
	}
	if len(doc.Switches) == 0 {
		return nil, errors.New("empty policy document")
	}

	entries := make(map[uint64]Entry, len(doc.Switches))
	for _, v := range doc.Switches {
		if v.DPID == 0 {
			return nil, errors.New("missing DPID in the policy document")
		}
		if _, ok := entries[v.DPID]; ok {
			return nil, errors.Errorf("duplicated DPID in the policy document: %v", v.DPID)
		}
		entries[v.DPID] = v.Entry
	}

	return NewTable(entries)
}

// Load reads the policy table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the policy file")
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid policy file %v", path)
	}
	logger.Infof("loaded the policy table from %v: %v", path, t)

	return t, nil
}

func (r *MAC) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	mac, err := net.ParseMAC(s)
	if err != nil {
		return errors.Wrapf(err, "line %v", value.Line)
	}
	*r = MAC(mac)

	return nil
}

func (r MAC) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}
