// Package flowbuilder turns one decoded conntrack entry (wireformat.Entry)
// into zero, one, or two directional flow samples (§4.3 of the design).
package flowbuilder

import (
	"github.com/behrady/opensync/flowtypes"
	"github.com/behrady/opensync/internal/obslog"
	"github.com/behrady/opensync/wireformat"
)

// multicastMask is the reference's broadcast/multicast heuristic: the
// top byte of the IPv4 source address, all bits set. Flagged as
// suspicious in Design Notes §9 — the intended check may have been
// "is the destination multicast" rather than "does the source start
// with 255" — but reproduced exactly, bug-for-bug, per the spec.
const multicastMask = 0xFF000000

// Builder converts conntrack entries into flow samples for one
// configured zone.
type Builder struct {
	log *obslog.Log
}

// New returns a Builder that logs under the given logger.
func New(log *obslog.Log) *Builder {
	return &Builder{log: log}
}

// Build implements §4.3 steps 1-7. The returned slice has length 0, 1,
// or 2; no partial sample is ever returned (Testable Property 2, 3).
func (b *Builder) Build(e *wireformat.Entry, configuredZone uint16) []flowtypes.FlowSample {
	zone := uint16(0)
	if e.HasZone {
		zone = e.Zone
	}
	if zone != configuredZone {
		return nil
	}

	if e.TupleOrig == nil || !e.TupleOrig.Filled() {
		return nil
	}
	if e.TupleReply == nil || !e.TupleReply.Filled() {
		return nil
	}

	var fwd, rev flowtypes.CtFlow
	fwd.Layer3 = e.TupleOrig.Layer3
	rev.Layer3 = e.TupleReply.Layer3
	fwd.CTZone = zone
	rev.CTZone = zone

	family := fwd.Layer3.Family
	multicastCollapse := false
	if family == flowtypes.FamilyV4 {
		multicastCollapse = multicastMaskMatches(fwd.Layer3.SrcIP)
		if !multicastCollapse {
			origSrc := fwd.Layer3.SrcIP
			fwd.Layer3.DstIP = rev.Layer3.SrcIP
			rev.Layer3.DstIP = origSrc
		}
	}

	if fwd.Layer3.ProtoType != wireformat.ProtoUDP {
		if !e.HasProtoInfo {
			if b.log != nil {
				b.log.Tracef("missing PROTOINFO for non-UDP flow, dropping")
			}
			return nil
		}
		if e.HasTCPState {
			switch e.TCPState {
			case wireformat.TCPConntrackSynSent, wireformat.TCPConntrackSynRecv, wireformat.TCPConntrackEstablished:
				fwd.Start = true
			case wireformat.TCPConntrackFinWait, wireformat.TCPConntrackCloseWait, wireformat.TCPConntrackLastAck,
				wireformat.TCPConntrackTimeWait, wireformat.TCPConntrackClose, wireformat.TCPConntrackTimeoutMax:
				fwd.End = true
			}
		}
	}

	if e.CountersOrig == nil {
		return nil
	}
	fwd.Pkts = *e.CountersOrig

	samples := []flowtypes.FlowSample{{CtFlow: fwd}}

	skipReverse := family == flowtypes.FamilyV4 && multicastCollapse
	if !skipReverse && e.CountersReply != nil {
		rev.Pkts = *e.CountersReply
		samples = append(samples, flowtypes.FlowSample{CtFlow: rev})
	}

	return samples
}

// multicastMaskMatches applies the 0xFF000000 mask to the big-endian
// IPv4 address, exactly as `(sin_addr.s_addr & 0xFF000000) ==
// 0xFF000000` did on the wire-order 32-bit address in the C reference.
func multicastMaskMatches(addr flowtypes.SockAddr) bool {
	return addr.V4[0] == 0xFF
}
