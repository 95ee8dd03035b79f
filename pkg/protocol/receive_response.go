package protocol

import "encoding/binary"

// Logger is the minimal diagnostics surface the parser needs.
type Logger interface {
	Warnf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// EmbeddedPacket is one radio-layer record carried inside a
// RECEIVE_RESPONSE payload.
type EmbeddedPacket struct {
	Type   PacketType
	NodeID uint16
	Data   []byte
}

// statusSkip maps a 2-byte status_type to the number of additional bytes
// to skip after it. A status_type outside this table means the payload
// cannot be walked at all.
var statusSkip = map[[2]byte]int{
	{0x00, 0xE0}: 7,
	{0x00, 0xFE}: 1,
	{0x00, 0xEE}: 2,
	{0x00, 0xFF}: 0,
}

// ParseReceiveResponse walks the status preamble and zero or more
// embedded packets in a RECEIVE_RESPONSE frame's payload, invoking
// onPacket for each one in wire order. Unknown status types abort the
// walk for this payload only; the caller's next frame is unaffected.
func ParseReceiveResponse(payload []byte, onPacket func(EmbeddedPacket), logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	if len(payload) < 3 {
		return
	}

	statusType := [2]byte{payload[0], payload[1]}
	extraSkip, ok := statusSkip[statusType]
	if !ok {
		logger.Warnf("unknown receive-response status type %02x%02x, aborting parse", statusType[0], statusType[1])
		return
	}

	offset := 2 + extraSkip
	// Slot counter, observed to always be present regardless of status
	// type.
	offset += 3
	if remaining := len(payload) - offset; remaining < 7 {
		logger.Debugf("receive-response payload has %d bytes after status and slot counter, fewer than one packet header", remaining)
	}

	for offset+7 <= len(payload) {
		packetType := PacketType(payload[offset])
		offset++

		nodeID := binary.BigEndian.Uint16(payload[offset : offset+2])
		offset += 2

		// Short address + DSN, unused by this pipeline.
		offset += 3

		dataLength := int(payload[offset])
		offset++

		if offset+dataLength > len(payload) {
			logger.Debugf("truncated embedded packet: need %d bytes, have %d", dataLength, len(payload)-offset)
			return
		}

		data := payload[offset : offset+dataLength]
		offset += dataLength

		onPacket(EmbeddedPacket{Type: packetType, NodeID: nodeID, Data: data})
	}
}
