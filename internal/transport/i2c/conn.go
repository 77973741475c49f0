// internal/transport/i2c/conn.go
package i2c

import (
	"errors"
	"fmt"
	"io"

	"tinygo.org/x/drivers"
)

// Conn implements transport.Conn on top of a tinygo drivers.I2C bus.
// Block reads are SMBus-style: register byte written, then a repeated-start
// read of the block.
type Conn struct {
	bus    drivers.I2C
	closer io.Closer
}

// New wraps an already configured bus. closer may be nil.
func New(bus drivers.I2C, closer io.Closer) (*Conn, error) {
	if bus == nil {
		return nil, errors.New("i2c: bus required")
	}
	return &Conn{bus: bus, closer: closer}, nil
}

func (c *Conn) ReadBlock(addr uint16, reg byte, buf []byte) error {
	if err := c.bus.Tx(addr, []byte{reg}, buf); err != nil {
		return fmt.Errorf("i2c: read 0x%02x reg=%d len=%d: %w", addr, reg, len(buf), err)
	}
	return nil
}

func (c *Conn) SendByte(addr uint16, b byte) error {
	if err := c.bus.Tx(addr, []byte{b}, nil); err != nil {
		return fmt.Errorf("i2c: write 0x%02x byte=0x%02x: %w", addr, b, err)
	}
	return nil
}

func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
