package wireformat

import "encoding/binary"

// encAttr appends one netlink attribute (len, type, payload, padding)
// to b and returns the result — a minimal test-only encoder mirroring
// what the kernel would produce, used to build synthetic netlink
// buffers for the round-trip property in §8.
func encAttr(b []byte, typ uint16, payload []byte) []byte {
	length := uint16(4 + len(payload))
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint16(hdr[0:2], length)
	binary.LittleEndian.PutUint16(hdr[2:4], typ)
	b = append(b, hdr...)
	b = append(b, payload...)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func encU8(v uint8) []byte  { return []byte{v} }
func encU16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}
func encU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
func encU64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// encPortRaw encodes a port so that portRaw() decoding it and then
// NtohsPort round-trips to hostPort.
func encPortRaw(hostPort uint16) []byte {
	// On the wire the port is big-endian; portRaw reads it back via
	// LittleEndian, so encode it such that a LittleEndian read followed
	// by a byte-swap (NtohsPort) reproduces hostPort.
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, hostPort)
	return b
}

func encIPv4(ip [4]byte) []byte { return ip[:] }
func encIPv6(ip [16]byte) []byte { return ip[:] }
