// internal/status/snapshot.go
package status

import (
	"github.com/tamzrod/gpu-panel/internal/panel"
	"github.com/tamzrod/gpu-panel/internal/sensor"
)

// Snapshot represents exactly what the mirror is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health      uint16
	Fuel        uint16
	Oil         uint16
	RPM         uint16
	Voltages    [sensor.NumChannels]uint16
	Currents    [sensor.NumChannels]uint16
	BatteryFull uint16
	Links       uint16
}

// Initial is the boot snapshot written before the first frame.
func Initial() Snapshot {
	s := Snapshot{Health: HealthUnknown}
	for i := range s.Voltages {
		s.Voltages[i] = AbsentValue
		s.Currents[i] = AbsentValue
	}
	return s
}

// FromFrame flattens one display frame.
func FromFrame(f panel.Frame) Snapshot {
	s := Snapshot{
		Fuel: clampU16(f.Gauges.Fuel),
		Oil:  clampU16(f.Gauges.Oil),
		RPM:  clampU16(f.Gauges.RPM),
	}

	switch {
	case !f.On:
		s.Health = HealthOff
	case !f.Valid:
		s.Health = HealthNoData
	default:
		s.Health = HealthOK
	}

	for i, ch := range f.Channels {
		s.Voltages[i] = reading(ch.Voltage)
		s.Currents[i] = reading(ch.Current)
	}
	if f.BatteryFull {
		s.BatteryFull = 1
	}
	for i, on := range f.Links {
		if on {
			s.Links |= 1 << uint(i)
		}
	}
	return s
}

func reading(r panel.Reading) uint16 {
	if !r.Present {
		return AbsentValue
	}
	// keep the sentinel unambiguous
	if r.Value >= int(AbsentValue) {
		return AbsentValue - 1
	}
	return clampU16(r.Value)
}

func clampU16(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 0xFFFF:
		return 0xFFFF
	}
	return uint16(v)
}
