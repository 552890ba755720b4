package wireformat

import (
	"github.com/behrady/opensync/flowtypes"
)

// Tuple is a decoded CTA_TUPLE_ORIG/REPLY/MASTER attribute: the L3/L4
// identity carried by one direction of a conntrack entry.
type Tuple struct {
	Layer3 flowtypes.Layer3Info
	// Zone is the tuple-level CTA_TUPLE_ZONE, present on multi-zone NAT
	// setups. It is decoded (§4.2) but not surfaced past this package;
	// the flow-level zone filter is CTA_ZONE (§4.3).
	Zone    uint16
	HasZone bool
}

// parseTuple decodes and validates a CTA_TUPLE_* nested attribute,
// recursing into its CTA_TUPLE_IP and CTA_TUPLE_PROTO children.
func parseTuple(data []byte) (Tuple, error) {
	attrs, err := ParseAttrs(data)
	if err != nil {
		return Tuple{}, err
	}

	var (
		ipData    []byte
		protoData []byte
		out       Tuple
	)

	for _, a := range attrs {
		if a.Type > ctaTupleMax {
			continue
		}
		switch a.Type {
		case ctaTupleIP:
			ipData = a.Data
		case ctaTupleProt:
			protoData = a.Data
		case ctaTupleZone:
			v, err := u16(a.Data)
			if err != nil {
				return Tuple{}, err
			}
			out.Zone = v
			out.HasZone = true
		}
	}

	if ipData != nil {
		ip, err := parseIP(ipData)
		if err != nil {
			return Tuple{}, err
		}
		if src, ok := ip.srcAddr(); ok {
			out.Layer3.SrcIP = src
			out.Layer3.Family = src.Family
		}
		if dst, ok := ip.dstAddr(); ok {
			out.Layer3.DstIP = dst
		}
	}

	if protoData != nil {
		proto, err := parseProto(protoData)
		if err != nil {
			return Tuple{}, err
		}
		if proto.num != nil {
			out.Layer3.ProtoType = *proto.num
		}
		if proto.srcPort != nil {
			out.Layer3.SrcPort = *proto.srcPort
		}
		if proto.dstPort != nil {
			out.Layer3.DstPort = *proto.dstPort
		}
	}

	return out, nil
}

// Filled reports whether the tuple carries at least an IP pair — used
// by the flow builder to reject tuples with no usable address (the Go
// analogue of the reference never having set layer3_info.src_ip).
func (t Tuple) Filled() bool {
	return t.Layer3.Family == flowtypes.FamilyV4 || t.Layer3.Family == flowtypes.FamilyV6
}
