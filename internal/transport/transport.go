// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
)

// Error taxonomy of the instrument bus.
var (
	// ErrUnavailable means the bus handle never came up.
	ErrUnavailable = errors.New("transport: bus unavailable")
	// ErrTimeout means one operation exceeded its bound.
	ErrTimeout = errors.New("transport: operation timed out")
	// ErrBusy means an earlier operation is still wedged on the bus.
	ErrBusy = errors.New("transport: bus busy")
	// ErrClosed means the transport was closed.
	ErrClosed = errors.New("transport: closed")
)

// Conn is the blocking, hardware-facing side of the bus.
// Implementations do not need to be safe for concurrent use.
type Conn interface {
	// ReadBlock reads len(buf) bytes from register reg of device addr.
	ReadBlock(addr uint16, reg byte, buf []byte) error
	// SendByte writes one byte to device addr.
	SendByte(addr uint16, b byte) error
	Close() error
}

// Transport is what SensorBus consumes.
type Transport interface {
	Read(ctx context.Context, addr uint16, reg byte, n int) ([]byte, error)
	SendByte(ctx context.Context, addr uint16, b byte) error
	Close() error
}
