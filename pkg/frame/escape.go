package frame

const (
	sentinelByte = 0x7E
)

// sentinels delimit a frame on the wire.
var (
	frameStart = [2]byte{0x7E, 0x07}
	frameEnd   = [2]byte{0x7E, 0x08}
)

// escapeMap and unescapeMap cover the collision set: bytes that would be
// confused with a sentinel, or with 0x7E itself, are replaced on the wire
// by a two-byte escape sequence.
var unescapeMap = map[byte]byte{
	0x00: 0x7E,
	0x01: 0x24,
	0x02: 0x23,
	0x03: 0x25,
	0x04: 0xA4,
	0x05: 0xA3,
	0x06: 0xA5,
}

var escapeMap = map[byte]byte{
	0x7E: 0x00,
	0x24: 0x01,
	0x23: 0x02,
	0x25: 0x03,
	0xA4: 0x04,
	0xA3: 0x05,
	0xA5: 0x06,
}

// unescape reverses wire escaping over a body that does not itself contain
// the start/end sentinels. A 0x7E that is not followed by a known escape
// code (including a trailing one) is copied through unchanged; callers
// only reach this function once the decoder has checked the body for
// stray 0x7E bytes, so a well-formed body never contains one.
func unescape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == sentinelByte && i+1 < len(data) {
			if real, ok := unescapeMap[data[i+1]]; ok {
				out = append(out, real)
				i++
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

// escape is the left inverse of unescape: it re-introduces the two-byte
// sequences for any byte in the collision set.
func escape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if esc, ok := escapeMap[b]; ok {
			out = append(out, sentinelByte, esc)
			continue
		}
		out = append(out, b)
	}
	return out
}
