// internal/transport/guard_test.go
package transport

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ---- fake conn ----

type fakeConn struct {
	block   []byte
	readErr error
	hold    chan struct{} // when non-nil, ReadBlock waits on it
	writes  []byte
	closed  int
}

func (f *fakeConn) ReadBlock(addr uint16, reg byte, buf []byte) error {
	if f.hold != nil {
		<-f.hold
	}
	if f.readErr != nil {
		return f.readErr
	}
	copy(buf, f.block)
	return nil
}

func (f *fakeConn) SendByte(addr uint16, b byte) error {
	f.writes = append(f.writes, b)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed++
	return nil
}

// ---- tests ----

func TestGuard_ReadCopiesBlock(t *testing.T) {
	conn := &fakeConn{block: []byte{1, 2, 3, 4}}
	g := Guard(conn, 20*time.Millisecond)

	got, err := g.Read(context.Background(), 0x41, 0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, got)
}

func TestGuard_ReadErrorPassesThrough(t *testing.T) {
	boom := errors.New("nack")
	g := Guard(&fakeConn{readErr: boom}, 20*time.Millisecond)

	_, err := g.Read(context.Background(), 0x41, 0, 16)
	require.ErrorIs(t, err, boom)
}

func TestGuard_InvalidLength(t *testing.T) {
	g := Guard(&fakeConn{}, 0)

	_, err := g.Read(context.Background(), 0x41, 0, 0)
	require.Error(t, err)
}

func TestGuard_TimeoutThenBusyUntilRelease(t *testing.T) {
	conn := &fakeConn{block: []byte{9}, hold: make(chan struct{})}
	g := Guard(conn, 10*time.Millisecond)

	_, err := g.Read(context.Background(), 0x41, 0, 1)
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, g.Busy())

	// wedged read still on the bus: skip, do not queue
	err = g.SendByte(context.Background(), 0x40, 0x01)
	require.ErrorIs(t, err, ErrBusy)
	require.Empty(t, conn.writes)

	close(conn.hold)
	require.Eventually(t, func() bool { return !g.Busy() }, time.Second, time.Millisecond)

	got, err := g.Read(context.Background(), 0x41, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, got)
}

func TestGuard_ParentCancel(t *testing.T) {
	conn := &fakeConn{hold: make(chan struct{})}
	defer close(conn.hold)
	g := Guard(conn, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Read(ctx, 0x41, 0, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGuard_CloseOnce(t *testing.T) {
	conn := &fakeConn{}
	g := Guard(conn, 0)

	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	require.Equal(t, 1, conn.closed)

	err := g.SendByte(context.Background(), 0x40, 0x01)
	require.ErrorIs(t, err, ErrClosed)
}

func TestUnavailable_AllOpsFail(t *testing.T) {
	u := Unavailable{Cause: errors.New("open /dev/i2c-1: no such file")}

	_, err := u.Read(context.Background(), 0x41, 0, 16)
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, u.SendByte(context.Background(), 0x40, 1), ErrUnavailable)
	require.ErrorIs(t, Unavailable{}.SendByte(context.Background(), 0x40, 1), ErrUnavailable)
}

// Bus writes take a device address, so no transport may look like an
// io.ByteWriter.
func TestTransports_AreNotByteWriters(t *testing.T) {
	for name, v := range map[string]any{
		"guarded":     Guard(&fakeConn{}, 0),
		"unavailable": Unavailable{},
		"conn":        &fakeConn{},
	} {
		_, ok := v.(io.ByteWriter)
		require.False(t, ok, name)
	}
}
