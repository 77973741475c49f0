// internal/panel/derive.go
package panel

import "github.com/tamzrod/gpu-panel/internal/sensor"

// DeriveFrame builds the RUNNING frame for one snapshot read.
// ok=false (no snapshot) yields zero gauges and absent channels.
func DeriveFrame(s sensor.Snapshot, ok bool) Frame {
	f := Frame{On: true, Valid: ok}
	if ok {
		f.Gauges = s.Gauges()
		f.BatteryFull = s.BatteryFull()
		for i := 0; i < sensor.NumChannels; i++ {
			f.Channels[i] = ChannelStatus{
				Voltage: Present(s.Voltages[i]),
				Current: Present(s.Currents[i]),
			}
		}
	}
	f.Links = deriveLinks(f.Channels)
	return f
}

// OffFrame is the terminal STOPPED frame: nothing from earlier frames leaks in.
func OffFrame() Frame {
	return Frame{}
}

func deriveLinks(ch [sensor.NumChannels]ChannelStatus) [NumLinks]bool {
	var out [NumLinks]bool
	for i, l := range Links {
		out[i] = ch[l.Channel()-1].Current.Active()
	}
	return out
}
