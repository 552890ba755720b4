package wireformat

// protoAttrs is the decoded CTA_PROTO_* table, nested inside
// CTA_TUPLE_PROTO. ICMP fields are decoded and validated (so a
// malformed ICMP attribute still aborts the message per §4.2) but are
// never surfaced on the flow — §4.3's explicit non-goal.
type protoAttrs struct {
	num              *uint8
	srcPort, dstPort *uint16
	icmpType         *uint8
	icmpCode         *uint8
	icmpID           *uint16
}

func parseProto(data []byte) (protoAttrs, error) {
	attrs, err := ParseAttrs(data)
	if err != nil {
		return protoAttrs{}, err
	}

	var out protoAttrs
	for _, a := range attrs {
		if a.Type > ctaProtoMax {
			continue
		}
		switch a.Type {
		case ctaProtoNum:
			v, err := u8(a.Data)
			if err != nil {
				return protoAttrs{}, err
			}
			out.num = &v
		case ctaProtoSrcPort:
			v, err := portRaw(a.Data)
			if err != nil {
				return protoAttrs{}, err
			}
			out.srcPort = &v
		case ctaProtoDstPort:
			v, err := portRaw(a.Data)
			if err != nil {
				return protoAttrs{}, err
			}
			out.dstPort = &v
		case ctaProtoICMPType:
			v, err := u8(a.Data)
			if err != nil {
				return protoAttrs{}, err
			}
			out.icmpType = &v
		case ctaProtoICMPCode:
			v, err := u8(a.Data)
			if err != nil {
				return protoAttrs{}, err
			}
			out.icmpCode = &v
		case ctaProtoICMPID:
			v, err := portRaw(a.Data)
			if err != nil {
				return protoAttrs{}, err
			}
			out.icmpID = &v
		}
	}
	return out, nil
}
