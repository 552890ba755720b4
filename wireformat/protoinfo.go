package wireformat

// protoInfoAttrs is the decoded CTA_PROTOINFO table.
type protoInfoAttrs struct {
	tcp []byte // raw nested CTA_PROTOINFO_TCP payload, validated as nested
}

func parseProtoInfo(data []byte) (protoInfoAttrs, error) {
	attrs, err := ParseAttrs(data)
	if err != nil {
		return protoInfoAttrs{}, err
	}

	var out protoInfoAttrs
	for _, a := range attrs {
		if a.Type > ctaProtoInfoMax {
			continue
		}
		switch a.Type {
		case ctaProtoInfoTCP:
			out.tcp = a.Data
		}
	}
	return out, nil
}

// tcpState decodes CTA_PROTOINFO_TCP_STATE out of a CTA_PROTOINFO_TCP
// nested payload. Returns ok=false if the state attribute is absent.
func tcpState(tcpPayload []byte) (TCPState, bool, error) {
	attrs, err := ParseAttrs(tcpPayload)
	if err != nil {
		return 0, false, err
	}

	for _, a := range attrs {
		if a.Type > ctaProtoInfoTCPMax {
			continue
		}
		if a.Type == ctaProtoInfoTCPState {
			v, err := u8(a.Data)
			if err != nil {
				return 0, false, err
			}
			return TCPState(v), true, nil
		}
	}
	return 0, false, nil
}
