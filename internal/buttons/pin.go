// internal/buttons/pin.go
package buttons

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pin is an input pin armed for edge detection.
type Pin interface {
	Number() int
	// WaitForEdge blocks until an edge or the timeout; true on edge.
	WaitForEdge(timeout time.Duration) bool
	// Read returns the current level (true = high).
	Read() bool
}

type periphPin struct {
	p gpio.PinIO
}

func (p periphPin) Number() int { return p.p.Number() }

func (p periphPin) WaitForEdge(timeout time.Duration) bool { return p.p.WaitForEdge(timeout) }

func (p periphPin) Read() bool { return p.p.Read() == gpio.High }

// OpenPins arms every BCM pin as a pulled-up input with falling-edge
// detection. Buttons short the line to ground when pressed.
func OpenPins(pins map[Button]int) (map[Button]Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("buttons: host init: %w", err)
	}

	out := make(map[Button]Pin, len(pins))
	for b, n := range pins {
		name := fmt.Sprintf("GPIO%d", n)
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("buttons: %s: pin %s not found", b, name)
		}
		if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return nil, fmt.Errorf("buttons: %s: arm %s: %w", b, name, err)
		}
		out[b] = periphPin{p: p}
	}
	return out, nil
}
