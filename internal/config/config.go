// internal/config/config.go
package config

type Config struct {
	Panel   PanelConfig   `yaml:"panel"`
	Bus     BusConfig     `yaml:"bus"`
	Buttons ButtonsConfig `yaml:"buttons"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Log     LogConfig     `yaml:"log"`
}

// ---- PANEL ----

type PanelConfig struct {
	Name      string `yaml:"name"`
	RefreshMs int    `yaml:"refresh_ms"`
}

// ---- BUS ----

const (
	TransportI2C    = "i2c"
	TransportModbus = "modbus"
	TransportNone   = "none"
)

type BusConfig struct {
	Transport string `yaml:"transport"`
	TimeoutMs int    `yaml:"timeout_ms"`

	SensorAddress     uint16 `yaml:"sensor_address"`
	ControllerAddress uint16 `yaml:"controller_address"`
	MCUAddress        uint16 `yaml:"mcu_address"`
	Register          uint8  `yaml:"register"`

	I2C    I2CConfig    `yaml:"i2c"`
	Modbus ModbusConfig `yaml:"modbus"`
}

type I2CConfig struct {
	Bus string `yaml:"bus"`
}

type ModbusConfig struct {
	Endpoint        string `yaml:"endpoint"` // tcp://host:port | rtu:///dev/ttyX
	BaudRate        int    `yaml:"baud_rate"`
	CommandRegister uint16 `yaml:"command_register"`
}

// ---- BUTTONS ----

type ButtonsConfig struct {
	Enabled    bool           `yaml:"enabled"`
	DebounceMs int            `yaml:"debounce_ms"`
	Pins       map[string]int `yaml:"pins"` // button name -> BCM pin
}

// ---- MIRROR ----

// MirrorConfig is the optional Modbus status mirror. Empty endpoint disables it.
type MirrorConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	BaseSlot  uint16 `yaml:"base_slot"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}
