// internal/transport/modbus/conn_test.go
package modbus

import (
	"errors"
	"testing"

	"github.com/goburrow/modbus"
	"github.com/stretchr/testify/require"
)

// fakeClient overrides the two calls the transport makes.
type fakeClient struct {
	modbus.Client

	regs     []byte
	readAddr uint16
	readQty  uint16
	writes   []uint16
	failOn   int // 1-based write index that fails
}

func (f *fakeClient) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	f.readAddr, f.readQty = address, quantity
	n := int(quantity) * 2
	if n > len(f.regs) {
		n = len(f.regs)
	}
	return f.regs[:n], nil
}

func (f *fakeClient) WriteSingleRegister(address, value uint16) ([]byte, error) {
	f.writes = append(f.writes, value)
	if f.failOn == len(f.writes) {
		return nil, errors.New("exception 2")
	}
	return nil, nil
}

func newTestConn(cli *fakeClient, slave *byte) *Conn {
	return &Conn{
		client:   cli,
		cmdReg:   DefaultCommandRegister,
		slaveSet: func(id byte) { *slave = id },
	}
}

func TestConn_ReadBlockMapsOntoRegisters(t *testing.T) {
	block := []byte{12, 13, 14, 1, 2, 3, 80, 60, 0x01, 0x2C, 40, 0, 0, 0, 0, 0}
	cli := &fakeClient{regs: block}
	var slave byte
	c := newTestConn(cli, &slave)

	buf := make([]byte, 16)
	require.NoError(t, c.ReadBlock(0x41, 0, buf))
	require.Equal(t, byte(0x41), slave)
	require.Equal(t, uint16(0), cli.readAddr)
	require.Equal(t, uint16(8), cli.readQty)
	require.Equal(t, block, buf)
}

func TestConn_ReadBlockOddLengthRoundsUp(t *testing.T) {
	cli := &fakeClient{regs: []byte{1, 2, 3, 4}}
	var slave byte
	c := newTestConn(cli, &slave)

	buf := make([]byte, 3)
	require.NoError(t, c.ReadBlock(0x41, 4, buf))
	require.Equal(t, uint16(2), cli.readQty)
	require.Equal(t, uint16(4), cli.readAddr)
	require.Equal(t, []byte{1, 2, 3}, buf)
}

func TestConn_ReadBlockShortPayload(t *testing.T) {
	cli := &fakeClient{regs: []byte{1, 2}}
	var slave byte
	c := newTestConn(cli, &slave)

	require.Error(t, c.ReadBlock(0x41, 0, make([]byte, 16)))
}

func TestConn_SendByteUsesCommandRegister(t *testing.T) {
	cli := &fakeClient{}
	var slave byte
	c := newTestConn(cli, &slave)

	require.NoError(t, c.SendByte(0x40, 0x05))
	require.Equal(t, byte(0x40), slave)
	require.Equal(t, []uint16{0x05}, cli.writes)

	cli.failOn = 2
	require.Error(t, c.SendByte(0x40, 0x06))
}

func TestConn_SlaveRange(t *testing.T) {
	var slave byte
	c := newTestConn(&fakeClient{}, &slave)

	require.Error(t, c.SendByte(0, 1))
	require.Error(t, c.SendByte(300, 1))
}

func TestNew_RejectsUnknownEndpoint(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{Endpoint: "udp://10.0.0.1:502"})
	require.Error(t, err)
}
