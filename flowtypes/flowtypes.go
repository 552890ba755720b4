// Package flowtypes holds the data model shared across the collector's
// stages: the parsed conntrack shape, the directional flow sample, and
// the small value types carried between the decoder, the flow builder
// and the enrichment/aggregator stages.
package flowtypes

import (
	"fmt"
	"net"
)

// Family is the L3 address family of a flow.
type Family uint8

// Supported address families.
const (
	FamilyV4 Family = 4
	FamilyV6 Family = 6
)

func (f Family) String() string {
	if f == FamilyV6 {
		return "v6"
	}
	return "v4"
}

// SockAddr is a tagged union over an IPv4 or IPv6 address. Family is
// always carried explicitly rather than inferred from len(bytes), since
// a zero-value SockAddr must not be mistaken for "unset" vs "::".
type SockAddr struct {
	Family Family
	V4     [4]byte
	V6     [16]byte
}

// IP renders the address as a net.IP for textual/log use.
func (s SockAddr) IP() net.IP {
	if s.Family == FamilyV6 {
		return net.IP(s.V6[:])
	}
	return net.IP(s.V4[:])
}

func (s SockAddr) String() string {
	return s.IP().String()
}

// SockAddrFromV4 builds a SockAddr from a 4-byte big-endian IPv4 address.
func SockAddrFromV4(b [4]byte) SockAddr {
	return SockAddr{Family: FamilyV4, V4: b}
}

// SockAddrFromV6 builds a SockAddr from a 16-byte IPv6 address.
func SockAddrFromV6(b [16]byte) SockAddr {
	return SockAddr{Family: FamilyV6, V6: b}
}

// Layer3Info is the L3/L4 identity of one direction of a flow.
//
// SrcPort and DstPort are stored exactly as received on the wire
// (network byte order) per §4.2's byte-order policy: this package never
// calls ntohs on them. Callers that need a host-order port (textual
// logging, the filter adapter) convert at their own boundary via
// NtohsPort.
type Layer3Info struct {
	SrcIP, DstIP     SockAddr
	SrcPort, DstPort uint16
	ProtoType        uint8
	Family           Family
}

// PktInfo is a packet/byte counter pair, already converted to host byte
// order by the decoder (§4.2: counters are converted, ports are not).
type PktInfo struct {
	Packets uint64
	Bytes   uint64
}

// CtFlow is one directional conntrack observation: the data carried by
// exactly one FlowSample.
type CtFlow struct {
	Layer3 Layer3Info
	Pkts   PktInfo
	CTZone uint16
	Start  bool
	End    bool
}

// FlowSample is a CtFlow ready for enrichment and submission. It has no
// list linkage of its own in this port: ownership is expressed by which
// slice currently holds it (pending.List, a filter-rejected discard, or
// the aggregator), which is the idiomatic Go analogue of the C
// reference's explicit alloc/free/list-node lifecycle.
type FlowSample struct {
	CtFlow
}

// String renders a flow the way ct_stats_print_contrack did, for the
// trace-level debug dump carried over from the reference (SPEC_FULL.md,
// "Supplemented features").
func (f FlowSample) String() string {
	return fmt.Sprintf(
		"proto=%d src=%s dst=%s sport=%d dport=%d packets=%d bytes=%d start=%t end=%t",
		f.Layer3.ProtoType, f.Layer3.SrcIP, f.Layer3.DstIP,
		NtohsPort(f.Layer3.SrcPort), NtohsPort(f.Layer3.DstPort),
		f.Pkts.Packets, f.Pkts.Bytes, f.Start, f.End,
	)
}

// NtohsPort converts a network-byte-order port to host order. Declared
// here (rather than imported from wireformat) so flowtypes has no
// dependency on the decoder package; wireformat.NtohsPort is an alias
// of this function.
func NtohsPort(p uint16) uint16 {
	return (p >> 8) | (p << 8)
}
