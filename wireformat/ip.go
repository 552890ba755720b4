package wireformat

import "github.com/behrady/opensync/flowtypes"

// ipAttrs is the decoded CTA_IP_* table, nested inside CTA_TUPLE_IP.
type ipAttrs struct {
	v4Src, v4Dst *[4]byte
	v6Src, v6Dst *[16]byte
}

// parseIP validates and decodes a CTA_IP_* nested attribute list.
//
// Unknown types (index beyond ctaIPMax) are ignored per §4.2. A known
// type with the wrong shape aborts decoding of the current message.
func parseIP(data []byte) (ipAttrs, error) {
	attrs, err := ParseAttrs(data)
	if err != nil {
		return ipAttrs{}, err
	}

	var out ipAttrs
	for _, a := range attrs {
		if a.Type > ctaIPMax {
			continue
		}
		switch a.Type {
		case ctaIPV4Src:
			v, err := bin(a.Data, 4)
			if err != nil {
				return ipAttrs{}, err
			}
			var b [4]byte
			copy(b[:], v)
			out.v4Src = &b
		case ctaIPV4Dst:
			v, err := bin(a.Data, 4)
			if err != nil {
				return ipAttrs{}, err
			}
			var b [4]byte
			copy(b[:], v)
			out.v4Dst = &b
		case ctaIPV6Src:
			v, err := bin(a.Data, 16)
			if err != nil {
				return ipAttrs{}, err
			}
			var b [16]byte
			copy(b[:], v)
			out.v6Src = &b
		case ctaIPV6Dst:
			v, err := bin(a.Data, 16)
			if err != nil {
				return ipAttrs{}, err
			}
			var b [16]byte
			copy(b[:], v)
			out.v6Dst = &b
		}
	}
	return out, nil
}

// srcAddr returns the decoded source SockAddr, preferring V4 since a
// tuple never carries both families at once.
func (i ipAttrs) srcAddr() (flowtypes.SockAddr, bool) {
	switch {
	case i.v4Src != nil:
		return flowtypes.SockAddrFromV4(*i.v4Src), true
	case i.v6Src != nil:
		return flowtypes.SockAddrFromV6(*i.v6Src), true
	default:
		return flowtypes.SockAddr{}, false
	}
}

func (i ipAttrs) dstAddr() (flowtypes.SockAddr, bool) {
	switch {
	case i.v4Dst != nil:
		return flowtypes.SockAddrFromV4(*i.v4Dst), true
	case i.v6Dst != nil:
		return flowtypes.SockAddrFromV6(*i.v6Dst), true
	default:
		return flowtypes.SockAddr{}, false
	}
}
