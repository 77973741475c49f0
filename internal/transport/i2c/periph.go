// internal/transport/i2c/periph.go
package i2c

import (
	"fmt"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Open initialises the host drivers and opens the named Linux I²C bus
// ("1" is /dev/i2c-1 on a Raspberry Pi). The periph bus speaks the same
// Tx contract as drivers.I2C.
func Open(name string) (*Conn, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2c: host init: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c: open bus %q: %w", name, err)
	}

	return New(bus, bus)
}
