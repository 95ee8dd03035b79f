package transport

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
)

const readWindow = time.Second

// SerialTransport reads from a local serial device.
type SerialTransport struct {
	port serial.Port
	buf  []byte
}

// OpenSerial opens devicePath at baudRate, 8-N-1, with a short read
// timeout so Read can honor ctx cancellation between polls.
func OpenSerial(devicePath string, baudRate int) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(devicePath, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", devicePath, err)
	}
	if err := port.SetReadTimeout(readWindow); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", devicePath, err)
	}

	return &SerialTransport{port: port, buf: make([]byte, 4096)}, nil
}

func (t *SerialTransport) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := t.port.Read(t.buf)
	if err != nil {
		return nil, fmt.Errorf("serial read: %w", err)
	}
	if n == 0 {
		return nil, ErrTimeout
	}
	return append([]byte(nil), t.buf[:n]...), nil
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
