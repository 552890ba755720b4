package wireformat

import (
	"encoding/binary"
	"fmt"
)

// Attribute is one decoded netlink TLV: the nla_type (with the nested
// and net-byte-order flag bits stripped off) and its payload.
type Attribute struct {
	Type         uint16
	Nested       bool
	NetByteOrder bool
	Data         []byte
}

// ParseAttrs walks a flat sequence of netlink attributes (nla_len,
// nla_type, payload, padded to 4 bytes) and returns them in order.
//
// This is the one place malformed framing is detected: a truncated
// header or a length that under/overruns the buffer is a decode error
// that aborts the current message (§4.2, §7) — it is never a panic
// (Testable Property 4).
func ParseAttrs(b []byte) ([]Attribute, error) {
	var out []Attribute
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, fmt.Errorf("wireformat: truncated attribute header (%d bytes left)", len(b))
		}
		length := binary.LittleEndian.Uint16(b[0:2])
		rawType := binary.LittleEndian.Uint16(b[2:4])
		if length < 4 || int(length) > len(b) {
			return nil, fmt.Errorf("wireformat: invalid attribute length %d (have %d)", length, len(b))
		}

		out = append(out, Attribute{
			Type:         rawType & nlaTypeMask,
			Nested:       rawType&nlaFNested != 0,
			NetByteOrder: rawType&nlaFNetByteorder != 0,
			Data:         b[4:length],
		})

		adv := align4(int(length))
		if adv > len(b) {
			// Kernel pads the last attribute's trailing bytes only when
			// more data follows; a short final attribute is not an error.
			adv = len(b)
		}
		b = b[adv:]
	}
	return out, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

func u8(b []byte) (uint8, error) {
	if len(b) != 1 {
		return 0, fmt.Errorf("wireformat: expected 1 byte, got %d", len(b))
	}
	return b[0], nil
}

func u16(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("wireformat: expected 2 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint16(b), nil
}

// portRaw keeps a port's two wire bytes "as received" per §4.2's
// byte-order policy: the payload is big-endian on the wire, and we
// deliberately read it as a native (little-endian-host) value instead
// of correcting it, the same way the C reference's mnl_attr_get_u16
// hands back an uncorrected in-memory cast. NtohsPort undoes this at
// the consumer boundary — never normalize it here.
func portRaw(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("wireformat: expected 2 bytes, got %d", len(b))
	}
	return binary.LittleEndian.Uint16(b), nil
}

func u32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("wireformat: expected 4 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

func u64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("wireformat: expected 8 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func bin(b []byte, n int) ([]byte, error) {
	if len(b) != n {
		return nil, fmt.Errorf("wireformat: expected %d bytes, got %d", n, len(b))
	}
	return b, nil
}

// NtohsPort is an alias of flowtypes.NtohsPort kept local to this
// package's tests and callers that only import wireformat.
func NtohsPort(p uint16) uint16 {
	return (p >> 8) | (p << 8)
}
