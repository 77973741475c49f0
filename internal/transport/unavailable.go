// internal/transport/unavailable.go
package transport

import (
	"context"
	"fmt"
)

// Unavailable is the transport used when the bus failed to open at startup.
// Every operation short-circuits with ErrUnavailable.
type Unavailable struct {
	Cause error
}

func (u Unavailable) Read(context.Context, uint16, byte, int) ([]byte, error) {
	return nil, u.err()
}

func (u Unavailable) SendByte(context.Context, uint16, byte) error {
	return u.err()
}

func (u Unavailable) Close() error { return nil }

func (u Unavailable) err() error {
	if u.Cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, u.Cause)
}
