// internal/panel/power.go
package panel

import "sync/atomic"

// PowerState is the process-wide on/off switch. It starts on.
type PowerState struct {
	off atomic.Bool
}

func (p *PowerState) On() bool { return !p.off.Load() }

func (p *PowerState) Set(on bool) { p.off.Store(!on) }

// Toggle flips the state and returns the new value.
func (p *PowerState) Toggle() bool {
	for {
		off := p.off.Load()
		if p.off.CompareAndSwap(off, !off) {
			return off
		}
	}
}
