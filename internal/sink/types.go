// internal/sink/types.go
package sink

import "github.com/tamzrod/gpu-panel/internal/panel"

// blockQueue takes register images for delivery elsewhere. Submit must
// not block: it runs inside the refresh tick.
type blockQueue interface {
	Submit(regs []uint16)
}

// frameBuffer collects the per-field sink calls of one frame.
// Sinks that work on whole frames embed it and read Frame() on Commit.
type frameBuffer struct {
	f panel.Frame
}

func (b *frameBuffer) SetPowerIndicator(on bool) { b.f.On = on }

func (b *frameBuffer) SetGaugeValues(fuel, oil, rpm int) {
	b.f.Gauges.Fuel, b.f.Gauges.Oil, b.f.Gauges.RPM = fuel, oil, rpm
}

func (b *frameBuffer) SetChannelStatus(ch int, voltage, current panel.Reading) {
	if ch < 1 || ch > len(b.f.Channels) {
		return
	}
	b.f.Channels[ch-1] = panel.ChannelStatus{Voltage: voltage, Current: current}
}

func (b *frameBuffer) SetBatteryIndicator(full bool) { b.f.BatteryFull = full }

func (b *frameBuffer) SetConnectionState(l panel.Link, active bool) {
	if l < panel.Line1 || l > panel.Line5 {
		return
	}
	b.f.Links[l-1] = active
}

// Frame returns the buffered frame. A snapshot always carries channel 1,
// so its voltage tells a real read from the no-data frame.
func (b *frameBuffer) Frame() panel.Frame {
	f := b.f
	f.Valid = f.On && f.Channels[0].Voltage.Present
	return f
}
