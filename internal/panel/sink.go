// internal/panel/sink.go
package panel

// Sink is the display side of the panel. The cycle is its only producer.
type Sink interface {
	SetGaugeValues(fuel, oil, rpm int)
	SetChannelStatus(channel int, voltage, current Reading)
	SetBatteryIndicator(full bool)
	SetConnectionState(link Link, active bool)
}

// PowerIndicator is implemented by sinks that show the power light.
type PowerIndicator interface {
	SetPowerIndicator(on bool)
}

// Committer is implemented by sinks that want one call per finished frame.
type Committer interface {
	Commit() error
}

// Push delivers f to s in display order and commits it.
func Push(s Sink, f Frame) error {
	if p, ok := s.(PowerIndicator); ok {
		p.SetPowerIndicator(f.On)
	}
	s.SetGaugeValues(f.Gauges.Fuel, f.Gauges.Oil, f.Gauges.RPM)
	for i, st := range f.Channels {
		s.SetChannelStatus(i+1, st.Voltage, st.Current)
	}
	s.SetBatteryIndicator(f.BatteryFull)
	for i, l := range Links {
		s.SetConnectionState(l, f.Links[i])
	}

	if c, ok := s.(Committer); ok {
		return c.Commit()
	}
	return nil
}
