package protocol

import "encoding/binary"

// Frame is a classified, whole protocol message: the decoded address
// split into direction + gateway id, the envelope code, and the payload
// bytes that follow it.
type Frame struct {
	GatewayID    uint16
	FromGateway  bool
	EnvelopeType EnvelopeType
	Payload      []byte
}

// Classify extracts a Frame from a decoded frame body (address, envelope
// type, payload — CRC already stripped and verified by pkg/frame).
// Bodies shorter than 4 bytes are rejected by the decoder upstream and
// should never reach here, but Classify tolerates them defensively by
// returning ok=false.
func Classify(body []byte) (Frame, bool) {
	if len(body) < 4 {
		return Frame{}, false
	}

	address := binary.BigEndian.Uint16(body[0:2])
	f := Frame{
		GatewayID:    address & 0x7FFF,
		FromGateway:  address&0x8000 != 0,
		EnvelopeType: EnvelopeType{body[2], body[3]},
	}
	if len(body) > 4 {
		f.Payload = body[4:]
	}
	return f, true
}
