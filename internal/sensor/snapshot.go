// internal/sensor/snapshot.go
package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Register block layout of the sensor device.
// The layout is fixed by the sensor firmware and MUST NOT be configurable.
const (
	BlockLength = 16

	offVoltage1 = 0 // V1..V3 at 0..2
	offCurrent1 = 3 // I1..I3 at 3..5
	offFuel     = 6
	offOil      = 7
	offRPM      = 8 // big-endian, 8..9
	offMotorTmp = 10
)

// Channels are numbered 1..NumChannels.
const NumChannels = 3

// FullFuel is the fuel reading that means the battery is full.
const FullFuel = 100

var ErrShortRead = errors.New("sensor: short register block")

// Snapshot is one decoded register block.
// A Snapshot only exists when the whole block was read.
type Snapshot struct {
	Voltages  [NumChannels]int
	Currents  [NumChannels]int
	Fuel      int
	Oil       int
	RPM       uint16
	MotorTemp int
}

// Decode converts a raw block. Anything short of BlockLength is an error.
func Decode(block []byte) (Snapshot, error) {
	if len(block) < BlockLength {
		return Snapshot{}, fmt.Errorf("%w: got=%d want=%d", ErrShortRead, len(block), BlockLength)
	}

	var s Snapshot
	for i := 0; i < NumChannels; i++ {
		s.Voltages[i] = int(block[offVoltage1+i])
		s.Currents[i] = int(block[offCurrent1+i])
	}
	s.Fuel = int(block[offFuel])
	s.Oil = int(block[offOil])
	s.RPM = binary.BigEndian.Uint16(block[offRPM : offRPM+2])
	s.MotorTemp = int(block[offMotorTmp])
	return s, nil
}

// Voltage returns the voltage of channel ch (1-based).
func (s Snapshot) Voltage(ch int) (int, bool) {
	if !validChannel(ch) {
		return 0, false
	}
	return s.Voltages[ch-1], true
}

// Current returns the current of channel ch (1-based).
func (s Snapshot) Current(ch int) (int, bool) {
	if !validChannel(ch) {
		return 0, false
	}
	return s.Currents[ch-1], true
}

// Gauges returns the analog gauge values carried by the snapshot.
func (s Snapshot) Gauges() Gauges {
	return Gauges{Fuel: s.Fuel, Oil: s.Oil, RPM: int(s.RPM)}
}

// BatteryFull is true only for an exact full fuel reading.
func (s Snapshot) BatteryFull() bool {
	return s.Fuel == FullFuel
}

// Gauges are the three analog gauge inputs. The zero value is the
// "no data" reading.
type Gauges struct {
	Fuel int
	Oil  int
	RPM  int
}

func validChannel(ch int) bool {
	return ch >= 1 && ch <= NumChannels
}
