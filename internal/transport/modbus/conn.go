// internal/transport/modbus/conn.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goburrow/modbus"
)

// DefaultCommandRegister is the holding register that receives command bytes.
const DefaultCommandRegister uint16 = 0x0100

// Conn implements transport.Conn against a Modbus gateway that exposes
// each bus device as a slave id: the sensor register block maps onto
// holding registers (two bytes per register, big-endian) and command
// bytes are written one register at a time.
type Conn struct {
	handler  handler
	client   modbus.Client
	cmdReg   uint16
	slaveSet func(id byte)
}

// handler is the part of the goburrow handlers we drive directly.
type handler interface {
	Connect() error
	Close() error
}

// Config is minimal gateway config.
//
// Endpoint is "tcp://host:port" or "rtu:///dev/ttyUSB0".
type Config struct {
	Endpoint        string
	Timeout         time.Duration
	BaudRate        int
	CommandRegister uint16
}

// New connects to the gateway.
func New(cfg Config) (*Conn, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus transport: endpoint required")
	}
	if cfg.CommandRegister == 0 {
		cfg.CommandRegister = DefaultCommandRegister
	}

	c := &Conn{cmdReg: cfg.CommandRegister}

	switch {
	case strings.HasPrefix(cfg.Endpoint, "tcp://"):
		h := modbus.NewTCPClientHandler(strings.TrimPrefix(cfg.Endpoint, "tcp://"))
		h.Timeout = cfg.Timeout
		c.handler = h
		c.client = modbus.NewClient(h)
		c.slaveSet = func(id byte) { h.SlaveId = id }

	case strings.HasPrefix(cfg.Endpoint, "rtu://"):
		h := modbus.NewRTUClientHandler(strings.TrimPrefix(cfg.Endpoint, "rtu://"))
		h.Timeout = cfg.Timeout
		h.BaudRate = cfg.BaudRate
		if h.BaudRate == 0 {
			h.BaudRate = 19200
		}
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		c.handler = h
		c.client = modbus.NewClient(h)
		c.slaveSet = func(id byte) { h.SlaveId = id }

	default:
		return nil, fmt.Errorf("modbus transport: unsupported endpoint %q", cfg.Endpoint)
	}

	if err := c.handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus transport: connect %s: %w", cfg.Endpoint, err)
	}
	return c, nil
}

func (c *Conn) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// ReadBlock reads ceil(len(buf)/2) holding registers starting at reg.
func (c *Conn) ReadBlock(addr uint16, reg byte, buf []byte) error {
	slave, err := slaveID(addr)
	if err != nil {
		return err
	}
	c.slaveSet(slave)

	qty := uint16((len(buf) + 1) / 2)
	raw, err := c.client.ReadHoldingRegisters(uint16(reg), qty)
	if err != nil {
		return fmt.Errorf("modbus transport: read slave=%d reg=%d qty=%d: %w", slave, reg, qty, err)
	}
	if len(raw) < len(buf) {
		return fmt.Errorf("modbus transport: short payload: got=%d want=%d", len(raw), len(buf))
	}
	copy(buf, raw)
	return nil
}

// SendByte writes b into the command register of slave addr.
func (c *Conn) SendByte(addr uint16, b byte) error {
	slave, err := slaveID(addr)
	if err != nil {
		return err
	}
	c.slaveSet(slave)

	if _, err := c.client.WriteSingleRegister(c.cmdReg, uint16(b)); err != nil {
		return fmt.Errorf("modbus transport: write slave=%d byte=0x%02x: %w", slave, b, err)
	}
	return nil
}

func slaveID(addr uint16) (byte, error) {
	if addr == 0 || addr > 247 {
		return 0, fmt.Errorf("modbus transport: device address %d out of slave range", addr)
	}
	return byte(addr), nil
}
