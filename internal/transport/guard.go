// internal/transport/guard.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds a single bus operation when none is configured.
const DefaultTimeout = 50 * time.Millisecond

// Guarded serializes operations on one Conn and bounds each of them.
// An operation that overruns its bound keeps the bus marked in-flight;
// until it returns, every new operation fails fast with ErrBusy.
type Guarded struct {
	mu       sync.Mutex
	conn     Conn
	timeout  time.Duration
	inflight atomic.Bool
	closed   bool
}

// Guard wraps conn. A non-positive timeout selects DefaultTimeout.
func Guard(conn Conn, timeout time.Duration) *Guarded {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guarded{conn: conn, timeout: timeout}
}

// Read performs one block read of n bytes.
func (g *Guarded) Read(ctx context.Context, addr uint16, reg byte, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("transport: invalid read length %d", n)
	}

	var out []byte
	err := g.do(ctx, func() error {
		// The buffer belongs to the operation: a wedged read may still
		// write into it after the caller gave up.
		buf := make([]byte, n)
		if err := g.conn.ReadBlock(addr, reg, buf); err != nil {
			return err
		}
		out = buf
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SendByte writes a single byte.
func (g *Guarded) SendByte(ctx context.Context, addr uint16, b byte) error {
	return g.do(ctx, func() error {
		return g.conn.SendByte(addr, b)
	})
}

// Close closes the underlying Conn. Safe to call more than once.
func (g *Guarded) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	return g.conn.Close()
}

// Busy reports whether a timed-out operation is still on the bus.
func (g *Guarded) Busy() bool { return g.inflight.Load() }

func (g *Guarded) do(ctx context.Context, op func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	if g.inflight.Load() {
		return ErrBusy
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan error, 1)
	g.inflight.Store(true)
	go func() {
		err := op()
		g.inflight.Store(false)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, g.timeout)
		}
		return ctx.Err()
	}
}
