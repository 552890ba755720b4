package wireformat

import "github.com/behrady/opensync/flowtypes"

// Entry is the fully-decoded set of top-level CTA_* attributes for one
// conntrack netlink message, after recursing into every nested
// attribute the flow builder needs.
type Entry struct {
	Zone       uint16
	HasZone    bool
	TupleOrig  *Tuple
	TupleReply *Tuple

	// TCPState/HasTCPState reflect CTA_PROTOINFO's CTA_PROTOINFO_TCP's
	// CTA_PROTOINFO_TCP_STATE, when CTA_PROTOINFO was present at all.
	HasProtoInfo bool
	TCPState     TCPState
	HasTCPState  bool

	CountersOrig  *flowtypes.PktInfo
	CountersReply *flowtypes.PktInfo
}

// DecodeEntry parses the CTA_* attribute stream following a conntrack
// message's nfgenmsg header (§4.1, §4.2). Unknown top-level types are
// ignored; a malformed known attribute aborts decoding with an error
// that the caller (the collector's sweep) treats as scoped to this one
// message only.
func DecodeEntry(payload []byte) (*Entry, error) {
	attrs, err := ParseAttrs(payload)
	if err != nil {
		return nil, err
	}

	e := &Entry{}
	for _, a := range attrs {
		if a.Type > ctaMax {
			continue
		}
		switch a.Type {
		case ctaZone:
			v, err := u16(a.Data)
			if err != nil {
				return nil, err
			}
			e.Zone = v
			e.HasZone = true

		case ctaTupleOrig:
			t, err := parseTuple(a.Data)
			if err != nil {
				return nil, err
			}
			e.TupleOrig = &t

		case ctaTupleReply:
			t, err := parseTuple(a.Data)
			if err != nil {
				return nil, err
			}
			e.TupleReply = &t

		case ctaProtoInfo:
			e.HasProtoInfo = true
			pi, err := parseProtoInfo(a.Data)
			if err != nil {
				return nil, err
			}
			if pi.tcp != nil {
				state, ok, err := tcpState(pi.tcp)
				if err != nil {
					return nil, err
				}
				if ok {
					e.TCPState = state
					e.HasTCPState = true
				}
			}

		case ctaCountersOrig:
			c, err := parseCounters(a.Data)
			if err != nil {
				return nil, err
			}
			e.CountersOrig = &c

		case ctaCountersReply:
			c, err := parseCounters(a.Data)
			if err != nil {
				return nil, err
			}
			e.CountersReply = &c

		case ctaTimeout, ctaMark, ctaSecmark:
			if _, err := u32(a.Data); err != nil {
				return nil, err
			}
			// Validated per §4.2's shape table; not consumed downstream.
		}
	}

	return e, nil
}
