// internal/status/constants.go
package status

// Panel status block layout constants.
// The block mirrors one display frame into holding registers.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerPanel is the fixed number of registers in the block.
const SlotsPerPanel = 20

// ---- SLOT INDICES ----

// SlotHealth holds the panel health code.
const SlotHealth = 0

// Gauge slots.
const (
	SlotFuel = 1
	SlotOil  = 2
	SlotRPM  = 3
)

// SlotVoltageStart is the first of three per-channel voltage slots.
const SlotVoltageStart = 4

// SlotCurrentStart is the first of three per-channel current slots.
const SlotCurrentStart = 7

// SlotBatteryFull is 1 when the battery indicator is lit.
const SlotBatteryFull = 10

// SlotLinks holds the connection segments as a bitmask (bit n = line n+1).
const SlotLinks = 11

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the panel name.
// The name is always placed at the END of the block.
const SlotDeviceNameStart = 12

// SlotDeviceNameSlots is the number of slots reserved for the name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for the name.
const DeviceNameMaxChars = 16

// AbsentValue marks a channel reading that is absent this cycle.
const AbsentValue uint16 = 0xFFFF

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state, before the first frame.
const HealthUnknown uint16 = 0

// HealthOK represents a frame built from a sensor snapshot.
const HealthOK uint16 = 1

// HealthNoData represents a powered panel whose sensor read failed.
const HealthNoData uint16 = 2

// HealthOff represents a switched-off panel.
const HealthOff uint16 = 3
