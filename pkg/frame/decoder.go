// Package frame implements the gateway's byte-stuffed, CRC-protected
// wire framing: escaping, sentinel delimiting, and the reflected CRC-16
// checksum.
package frame

import (
	"bytes"
	"encoding/binary"
)

// MaxBufferSize bounds the decoder's internal accumulation buffer. A
// stream that never produces an end sentinel within this many bytes is
// treated as garbage and the decoder resyncs on the next start sentinel.
const MaxBufferSize = 1 << 20 // 1 MiB

// Logger is the minimal surface the decoder needs for diagnostics. It is
// satisfied by *charmbracelet/log.Logger.
type Logger interface {
	Warnf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Decoder consumes arbitrarily fragmented byte chunks and emits whole,
// unescaped, CRC-validated frame bodies via OnFrame. It is stateful
// across Feed calls and is not safe for concurrent use.
type Decoder struct {
	buf     []byte
	onFrame func(body []byte)
	log     Logger
}

// New creates a Decoder that invokes onFrame for each complete, valid
// frame. onFrame receives the unescaped inter-sentinel bytes with the
// trailing 2-byte CRC already stripped.
func New(onFrame func(body []byte), logger Logger) *Decoder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Decoder{onFrame: onFrame, log: logger}
}

// Feed appends newly-read bytes and emits every complete frame they
// produce, including frames that only became complete because of bytes
// carried over from a previous call.
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)

	for {
		if len(d.buf) > MaxBufferSize {
			d.log.Warnf("frame buffer overrun (%d bytes), resyncing", len(d.buf))
			d.buf = nil
			return
		}

		startIdx := bytes.Index(d.buf, frameStart[:])
		if startIdx == -1 {
			// Keep a single trailing sentinel byte in case it is the
			// first half of a start sequence split across reads.
			if n := len(d.buf); n > 0 && d.buf[n-1] == sentinelByte {
				d.buf = d.buf[n-1:]
			} else {
				d.buf = nil
			}
			return
		}
		if startIdx > 0 {
			d.buf = d.buf[startIdx:]
		}

		endIdx, resyncIdx, found := d.scanForEnd()
		if resyncIdx >= 0 {
			d.buf = d.buf[resyncIdx:]
			continue
		}
		if !found {
			return
		}

		escaped := d.buf[2:endIdx]
		d.buf = d.buf[endIdx+2:]
		d.emit(escaped)
	}
}

// scanForEnd looks for the end sentinel following a start sentinel at
// buf[0:2]. It returns either:
//   - (endIdx, -1, true) if the end sentinel starts at endIdx
//   - (0, resyncIdx, false) if a protocol violation (nested start, or a
//     lone 0x7E that is neither a sentinel nor a known escape) was found;
//     the caller should drop everything before resyncIdx and retry
//   - (0, -1, false) if no end sentinel has arrived yet
func (d *Decoder) scanForEnd() (endIdx int, resyncIdx int, found bool) {
	buf := d.buf
	i := 2
	for i < len(buf)-1 {
		if buf[i] != sentinelByte {
			i++
			continue
		}
		next := buf[i+1]
		switch {
		case next == frameEnd[1]:
			return i, -1, true
		case next == frameStart[1]:
			// A fresh start sentinel inside what we thought was a
			// frame means the original start was garbage; resync to
			// the new one.
			return 0, i, false
		case isEscapeContinuation(next):
			i += 2
		default:
			d.log.Warnf("stray 0x7E at offset %d not a sentinel or escape, resyncing", i)
			i += 2
			return 0, i, false
		}
	}
	return 0, -1, false
}

func isEscapeContinuation(b byte) bool {
	_, ok := unescapeMap[b]
	return ok
}

// emit unescapes, validates, and dispatches one frame body (the bytes
// strictly between the sentinels, still escaped).
func (d *Decoder) emit(escapedBody []byte) {
	body := unescape(escapedBody)
	if len(body) < 2 {
		d.log.Debugf("dropping frame too short to hold a CRC: %d bytes", len(body))
		return
	}

	payload, crcBytes := body[:len(body)-2], body[len(body)-2:]
	if len(payload) < 4 {
		d.log.Debugf("dropping frame with %d-byte payload, too short for address+envelope", len(payload))
		return
	}

	expected := binary.LittleEndian.Uint16(crcBytes)
	if got := crc16(payload); got != expected {
		d.log.Warnf("CRC mismatch: computed 0x%04x, expected 0x%04x", got, expected)
		return
	}

	d.onFrame(payload)
}

// Encode is the inverse of decoding: it escapes body, appends its
// little-endian CRC-16, and wraps the result in start/end sentinels.
// Nothing in this bridge's read path calls it — the decoder only ever
// consumes frames off the wire — but it keeps the framing logic
// symmetric and independently testable.
func Encode(body []byte) []byte {
	crc := crc16(body)
	crcBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(crcBytes, crc)

	raw := make([]byte, 0, len(body)+2)
	raw = append(raw, body...)
	raw = append(raw, crcBytes...)

	out := make([]byte, 0, len(raw)*2+4)
	out = append(out, frameStart[:]...)
	out = append(out, escape(raw)...)
	out = append(out, frameEnd[:]...)
	return out
}
