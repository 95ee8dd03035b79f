// Package transport provides the opaque blocking byte source the
// frame decoder reads from: a serial device or a serial-over-TCP
// tunnel.
package transport

import (
	"context"
	"errors"
)

// ErrTimeout is returned by Read when no bytes arrived within the
// read window. Callers should yield briefly and retry; it is not a
// fatal condition.
var ErrTimeout = errors.New("transport: read timeout")

// Transport is a blocking byte source. Read returns whatever bytes are
// currently available, blocking up to an implementation-defined
// window. A Read called with ctx already done returns ctx's error
// without blocking; a Read already blocked when ctx is cancelled
// returns at the end of its read window.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}
