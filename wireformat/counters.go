package wireformat

import "github.com/behrady/opensync/flowtypes"

// parseCounters decodes a CTA_COUNTERS_ORIG/REPLY nested payload into a
// PktInfo. The 64-bit counters always take precedence over the 32-bit
// fallback when both are present, matching get_counter's fixed
// 32-bit-then-64-bit apply order in the reference — this is independent
// of the wire order the attributes happen to arrive in, so the 32-bit
// pass is applied first and the 64-bit pass second regardless of which
// type appeared earlier in the message.
func parseCounters(data []byte) (flowtypes.PktInfo, error) {
	attrs, err := ParseAttrs(data)
	if err != nil {
		return flowtypes.PktInfo{}, err
	}

	var out flowtypes.PktInfo
	for _, a := range attrs {
		switch a.Type {
		case ctaCounters32Packets:
			v, err := u32(a.Data)
			if err != nil {
				return flowtypes.PktInfo{}, err
			}
			out.Packets = uint64(v)
		case ctaCounters32Bytes:
			v, err := u32(a.Data)
			if err != nil {
				return flowtypes.PktInfo{}, err
			}
			out.Bytes = uint64(v)
		}
	}
	for _, a := range attrs {
		switch a.Type {
		case ctaCountersPackets:
			v, err := u64(a.Data)
			if err != nil {
				return flowtypes.PktInfo{}, err
			}
			out.Packets = v
		case ctaCountersBytes:
			v, err := u64(a.Data)
			if err != nil {
				return flowtypes.PktInfo{}, err
			}
			out.Bytes = v
		}
	}
	return out, nil
}
