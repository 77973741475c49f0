// internal/config/load.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tamzrod/gpu-panel/internal/buttons"
	"github.com/tamzrod/gpu-panel/internal/sensor"
)

// Default returns the wiring of the stock panel.
func Default() *Config {
	pins := make(map[string]int, len(buttons.DefaultPins))
	for b, n := range buttons.DefaultPins {
		pins[string(b)] = n
	}

	return &Config{
		Panel: PanelConfig{
			Name:      "GPU",
			RefreshMs: 1000,
		},
		Bus: BusConfig{
			Transport:         TransportI2C,
			TimeoutMs:         50,
			SensorAddress:     sensor.DefaultSensorAddr,
			ControllerAddress: sensor.DefaultControllerAddr,
			MCUAddress:        sensor.DefaultMCUAddr,
			Register:          0,
			I2C:               I2CConfig{Bus: "1"},
			Modbus:            ModbusConfig{BaudRate: 19200},
		},
		Buttons: ButtonsConfig{
			Enabled:    true,
			DebounceMs: 300,
			Pins:       pins,
		},
		Mirror: MirrorConfig{
			UnitID:    1,
			TimeoutMs: 500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path means defaults + environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg, os.Getenv)
	return cfg, nil
}

// applyEnv overrides the fields operators change per deployment.
func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.Bus.Transport, "PANEL_TRANSPORT")
	set(&cfg.Bus.I2C.Bus, "PANEL_I2C_BUS")
	set(&cfg.Bus.Modbus.Endpoint, "PANEL_MODBUS_ENDPOINT")
	set(&cfg.Mirror.Endpoint, "PANEL_MIRROR_ENDPOINT")
	set(&cfg.Panel.Name, "PANEL_NAME")
	set(&cfg.Log.Level, "LOG_LEVEL")
	set(&cfg.Log.Format, "LOG_FORMAT")
}
