// internal/sink/multi.go
package sink

import (
	"errors"

	"github.com/tamzrod/gpu-panel/internal/panel"
)

// Multi fans every call out to several sinks in order.
type Multi []panel.Sink

func (m Multi) SetPowerIndicator(on bool) {
	for _, s := range m {
		if p, ok := s.(panel.PowerIndicator); ok {
			p.SetPowerIndicator(on)
		}
	}
}

func (m Multi) SetGaugeValues(fuel, oil, rpm int) {
	for _, s := range m {
		s.SetGaugeValues(fuel, oil, rpm)
	}
}

func (m Multi) SetChannelStatus(ch int, voltage, current panel.Reading) {
	for _, s := range m {
		s.SetChannelStatus(ch, voltage, current)
	}
}

func (m Multi) SetBatteryIndicator(full bool) {
	for _, s := range m {
		s.SetBatteryIndicator(full)
	}
}

func (m Multi) SetConnectionState(l panel.Link, active bool) {
	for _, s := range m {
		s.SetConnectionState(l, active)
	}
}

// Commit commits every sink; one failing sink does not hold back the others.
func (m Multi) Commit() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(panel.Committer); ok {
			if err := c.Commit(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
