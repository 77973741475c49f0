// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/gpu-panel/internal/buttons"
	"github.com/tamzrod/gpu-panel/internal/status"
)

// 7-bit addresses outside the reserved ranges.
const (
	minDeviceAddr = 0x03
	maxDeviceAddr = 0x77
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// PANEL
	// ------------------------------------------------------------

	if cfg.Panel.RefreshMs <= 0 {
		return fmt.Errorf("panel: refresh_ms must be > 0 (got %d)", cfg.Panel.RefreshMs)
	}
	for i := 0; i < len(cfg.Panel.Name); i++ {
		if cfg.Panel.Name[i] > 0x7F {
			return fmt.Errorf("panel: name must contain ASCII characters only")
		}
	}

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	b := cfg.Bus
	switch strings.ToLower(b.Transport) {
	case TransportI2C:
		if b.I2C.Bus == "" {
			return fmt.Errorf("bus: i2c.bus required for transport %q", b.Transport)
		}
	case TransportModbus:
		ep := b.Modbus.Endpoint
		if !strings.HasPrefix(ep, "tcp://") && !strings.HasPrefix(ep, "rtu://") {
			return fmt.Errorf("bus: modbus.endpoint must start with tcp:// or rtu:// (got %q)", ep)
		}
	case TransportNone:
	default:
		return fmt.Errorf("bus: unknown transport %q", b.Transport)
	}

	if b.TimeoutMs <= 0 {
		return fmt.Errorf("bus: timeout_ms must be > 0 (got %d)", b.TimeoutMs)
	}
	if b.TimeoutMs >= cfg.Panel.RefreshMs {
		return fmt.Errorf(
			"bus: timeout_ms %d must be shorter than panel refresh_ms %d",
			b.TimeoutMs,
			cfg.Panel.RefreshMs,
		)
	}

	addrs := map[string]uint16{
		"sensor_address":     b.SensorAddress,
		"controller_address": b.ControllerAddress,
		"mcu_address":        b.MCUAddress,
	}
	owner := make(map[uint16]string)
	for _, name := range []string{"sensor_address", "controller_address", "mcu_address"} {
		a := addrs[name]
		if a < minDeviceAddr || a > maxDeviceAddr {
			return fmt.Errorf("bus: %s 0x%02x out of range 0x%02x-0x%02x", name, a, minDeviceAddr, maxDeviceAddr)
		}
		if prev, exists := owner[a]; exists {
			return fmt.Errorf("bus: address collision: 0x%02x used by %s and %s", a, prev, name)
		}
		owner[a] = name
	}

	// ------------------------------------------------------------
	// BUTTONS
	// ------------------------------------------------------------

	if cfg.Buttons.Enabled {
		if cfg.Buttons.DebounceMs < 0 {
			return fmt.Errorf("buttons: debounce_ms must be >= 0 (got %d)", cfg.Buttons.DebounceMs)
		}

		pinOwner := make(map[int]string)
		for name, pin := range cfg.Buttons.Pins {
			if !buttons.Known(buttons.Button(name)) {
				return fmt.Errorf("buttons: unknown button %q", name)
			}
			if pin < 0 || pin > 27 {
				return fmt.Errorf("buttons: %s: BCM pin %d out of range 0-27", name, pin)
			}
			if prev, exists := pinOwner[pin]; exists {
				return fmt.Errorf("buttons: pin collision: BCM %d used by %q and %q", pin, prev, name)
			}
			pinOwner[pin] = name
		}
	}

	// ------------------------------------------------------------
	// MIRROR (OPT-IN)
	// ------------------------------------------------------------

	if cfg.Mirror.Endpoint != "" {
		if cfg.Mirror.TimeoutMs <= 0 || cfg.Mirror.TimeoutMs >= cfg.Panel.RefreshMs {
			return fmt.Errorf(
				"mirror: timeout_ms %d must be > 0 and shorter than panel refresh_ms %d",
				cfg.Mirror.TimeoutMs,
				cfg.Panel.RefreshMs,
			)
		}
		end := (int(cfg.Mirror.BaseSlot) + 1) * status.SlotsPerPanel
		if end > 0x10000 {
			return fmt.Errorf("mirror: base_slot %d puts the block past register 65535", cfg.Mirror.BaseSlot)
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}
	switch lvl := strings.ToLower(cfg.Log.Level); lvl {
	case "", "off", "none":
	default:
		if _, err := logrus.ParseLevel(lvl); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}

	return nil
}
