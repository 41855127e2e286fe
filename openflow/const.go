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

const (
	OF13_VERSION = 0x04
)

const (
	/* Immutable messages. */
	OFPT_HELLO        = iota /* Symmetric message */
	OFPT_ERROR               /* Symmetric message */
	OFPT_ECHO_REQUEST        /* Symmetric message */
	OFPT_ECHO_REPLY          /* Symmetric message */
	OFPT_EXPERIMENTER        /* Symmetric message */
	/* Switch configuration messages. */
	OFPT_FEATURES_REQUEST   /* Controller/switch message */
	OFPT_FEATURES_REPLY     /* Controller/switch message */
	OFPT_GET_CONFIG_REQUEST /* Controller/switch message */
	OFPT_GET_CONFIG_REPLY   /* Controller/switch message */
	OFPT_SET_CONFIG         /* Controller/switch message */
	/* Asynchronous messages. */
	OFPT_PACKET_IN    /* Async message */
	OFPT_FLOW_REMOVED /* Async message */
	OFPT_PORT_STATUS  /* Async message */
	/* Controller command messages. */
	OFPT_PACKET_OUT /* Controller/switch message */
	OFPT_FLOW_MOD   /* Controller/switch message */
	OFPT_GROUP_MOD  /* Controller/switch message */
	OFPT_PORT_MOD   /* Controller/switch message */
	OFPT_TABLE_MOD  /* Controller/switch message */
	/* Multipart messages. */
	OFPT_MULTIPART_REQUEST /* Controller/switch message */
	OFPT_MULTIPART_REPLY   /* Controller/switch message */
	/* Barrier messages. */
	OFPT_BARRIER_REQUEST /* Controller/switch message */
	OFPT_BARRIER_REPLY   /* Controller/switch message */
)

// Port numbering. Ports are numbered starting from 1.
const (
	OFPP_MAX        = 0xffffff00 /* Maximum number of physical and logical switch ports. */
	OFPP_IN_PORT    = 0xfffffff8 /* Send the packet out the input port. */
	OFPP_TABLE      = 0xfffffff9 /* Submit the packet to the first flow table. */
	OFPP_NORMAL     = 0xfffffffa /* Process with normal L2/L3 switching. */
	OFPP_FLOOD      = 0xfffffffb /* All physical ports in VLAN, except input port and those blocked or link down. */
	OFPP_ALL        = 0xfffffffc /* All physical ports except input port. */
	OFPP_CONTROLLER = 0xfffffffd /* Send to controller. */
	OFPP_LOCAL      = 0xfffffffe /* Local openflow "port". */
	OFPP_ANY        = 0xffffffff /* Wildcard port used only for flow mod (delete) and flow stats requests. */
)

const (
	OFPCML_MAX       = 0xffe5 /* maximum max_len value which can be used to request a specific byte length. */
	OFPCML_NO_BUFFER = 0xffff /* indicates that no buffering should be applied and the whole packet is to be sent to the controller. */
)

const (
	OFP_NO_BUFFER = 0xffffffff
)

const (
	OFPTT_ALL = 0xff
)

const (
	OFPC_FRAG_NORMAL = 0 /* No special handling for fragments. */
)

const (
	OFPFC_ADD           = iota /* New flow. */
	OFPFC_MODIFY               /* Modify all matching flows. */
	OFPFC_MODIFY_STRICT        /* Modify entry strictly matching wildcards and priority. */
	OFPFC_DELETE               /* Delete all matching flows. */
	OFPFC_DELETE_STRICT        /* Delete entry strictly matching wildcards and priority. */
)

const (
	OFPFF_SEND_FLOW_REM = 1 << 0 /* Send flow removed message when flow expires or is deleted. */
	OFPFF_CHECK_OVERLAP = 1 << 1 /* Check for overlapping entries first. */
)

const (
	OFPIT_GOTO_TABLE     = 1 /* Setup the next table in the lookup pipeline */
	OFPIT_WRITE_METADATA = 2 /* Setup the metadata field for use later in pipeline */
	OFPIT_WRITE_ACTIONS  = 3 /* Write the action(s) onto the datapath action set */
	OFPIT_APPLY_ACTIONS  = 4 /* Applies the action(s) immediately */
	OFPIT_CLEAR_ACTIONS  = 5 /* Clears all actions from the datapath action set */
)

const (
	OFPAT_OUTPUT = 0 /* Output to switch port. */
)

const (
	OFPMT_STANDARD = 0 /* Deprecated. */
	OFPMT_OXM      = 1 /* OpenFlow Extensible Match */
)

const (
	OFPXMC_OPENFLOW_BASIC = 0x8000 /* Basic class for OpenFlow */
)

/* OXM Flow match field types for OpenFlow basic class. */
const (
	OFPXMT_OFB_IN_PORT  = 0  /* Switch input port. */
	OFPXMT_OFB_ETH_DST  = 3  /* Ethernet destination address. */
	OFPXMT_OFB_ETH_SRC  = 4  /* Ethernet source address. */
	OFPXMT_OFB_ETH_TYPE = 5  /* Ethernet frame type. */
	OFPXMT_OFB_IP_PROTO = 10 /* IP protocol. */
	OFPXMT_OFB_TCP_SRC  = 13 /* TCP source port. */
	OFPXMT_OFB_TCP_DST  = 14 /* TCP destination port. */
	OFPXMT_OFB_UDP_SRC  = 15 /* UDP source port. */
	OFPXMT_OFB_UDP_DST  = 16 /* UDP destination port. */
)

const (
	OFPMP_DESC       = 0
	OFPMP_FLOW       = 1
	OFPMP_AGGREGATE  = 2
	OFPMP_TABLE      = 3
	OFPMP_PORT_STATS = 4
	OFPMP_PORT_DESC  = 13
)

const (
	OFPMPF_REQ_MORE   = 1 << 0 /* More requests to follow. */
	OFPMPF_REPLY_MORE = 1 << 0 /* More replies to follow. */
)

const (
	OFPET_HELLO_FAILED    = 0 /* Hello protocol failed. */
	OFPET_BAD_REQUEST     = 1 /* Request was not understood. */
	OFPET_BAD_ACTION      = 2 /* Error in action description. */
	OFPET_BAD_INSTRUCTION = 3 /* Error in instruction list. */
	OFPET_BAD_MATCH       = 4 /* Error in match. */
	OFPET_FLOW_MOD_FAILED = 5 /* Problem modifying flow entry. */
)

const (
	OFPHFC_INCOMPATIBLE = 0 /* No compatible version. */
	OFPHFC_EPERM        = 1 /* Permissions error. */
)

const (
	OFPFMFC_OVERLAP = 3 /* Attempted to add overlapping flow with CHECK_OVERLAP flag set. */
)

const (
	OFPG_ANY = 0xffffffff /* Wildcard group used only for flow stats requests. */
)
