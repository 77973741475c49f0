// internal/status/encode.go
package status

import "encoding/binary"

// Encode converts a Snapshot into the live part of the status block
// (every slot before the device name).
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotDeviceNameStart)

	regs[SlotHealth] = s.Health
	regs[SlotFuel] = s.Fuel
	regs[SlotOil] = s.Oil
	regs[SlotRPM] = s.RPM
	for i := range s.Voltages {
		regs[SlotVoltageStart+i] = s.Voltages[i]
		regs[SlotCurrentStart+i] = s.Currents[i]
	}
	regs[SlotBatteryFull] = s.BatteryFull
	regs[SlotLinks] = s.Links

	return regs
}

// EncodeFull returns the whole block, device name included.
func EncodeFull(s Snapshot, name []uint16) []uint16 {
	regs := make([]uint16, SlotsPerPanel)
	copy(regs, Encode(s))
	for i := 0; i < SlotDeviceNameSlots && i < len(name); i++ {
		regs[SlotDeviceNameStart+i] = name[i]
	}
	return regs
}

// EncodeDeviceName packs the first 16 characters of name into the name
// slots, two per register, high byte first. Unprintable bytes become '?'
// and a short name is zero padded.
func EncodeDeviceName(name string) []uint16 {
	var raw [2 * SlotDeviceNameSlots]byte
	n := copy(raw[:DeviceNameMaxChars], name)
	for i, c := range raw[:n] {
		if c < ' ' || c > '~' {
			raw[i] = '?'
		}
	}

	out := make([]uint16, SlotDeviceNameSlots)
	for i := range out {
		out[i] = binary.BigEndian.Uint16(raw[2*i:])
	}
	return out
}

// BlockAddr is the first holding register of the block in baseSlot.
func BlockAddr(baseSlot uint16) uint16 {
	return baseSlot * SlotsPerPanel
}
