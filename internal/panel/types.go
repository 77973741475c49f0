// internal/panel/types.go
package panel

import (
	"strconv"

	"github.com/tamzrod/gpu-panel/internal/sensor"
)

// Reading is a value that may be absent for this cycle.
// Absent is distinct from zero.
type Reading struct {
	Value   int
	Present bool
}

// Absent is the "no value this cycle" reading.
var Absent = Reading{}

// Present wraps a value read from the bus.
func Present(v int) Reading { return Reading{Value: v, Present: true} }

// Active is true for a present, non-zero reading.
func (r Reading) Active() bool { return r.Present && r.Value != 0 }

// Format renders the value with unit, or alt when absent.
func (r Reading) Format(unit, alt string) string {
	if !r.Present {
		return alt
	}
	return strconv.Itoa(r.Value) + unit
}

// ChannelStatus is derived fresh each cycle; it is never carried over.
type ChannelStatus struct {
	Voltage Reading
	Current Reading
}

// Link identifies one connection-line segment on the panel.
type Link int

const (
	Line1 Link = iota + 1
	Line2
	Line3
	Line4
	Line5
)

// NumLinks is the number of driven connection segments.
const NumLinks = 5

// Links lists every driven segment in display order.
var Links = [NumLinks]Link{Line1, Line2, Line3, Line4, Line5}

// linkChannel maps a segment to the channel whose current drives it:
// group A (Line1, Line2) follows S1, group B (Line3) follows S2,
// group C (Line4, Line5) follows S3.
var linkChannel = [NumLinks]int{1, 1, 2, 3, 3}

// Channel returns the channel (1-based) that drives l.
func (l Link) Channel() int {
	if l < Line1 || l > Line5 {
		return 0
	}
	return linkChannel[l-1]
}

func (l Link) String() string { return "line" + strconv.Itoa(int(l)) }

// Frame is one complete display update.
type Frame struct {
	// On is the power state the frame was produced under.
	On bool
	// Valid is true when the frame came from a snapshot.
	Valid bool

	Gauges      sensor.Gauges
	Channels    [sensor.NumChannels]ChannelStatus
	BatteryFull bool
	Links       [NumLinks]bool
}

// Channel returns the status of channel ch (1-based).
func (f Frame) Channel(ch int) ChannelStatus {
	if ch < 1 || ch > sensor.NumChannels {
		return ChannelStatus{}
	}
	return f.Channels[ch-1]
}

// LinkActive reports the state of segment l.
func (f Frame) LinkActive(l Link) bool {
	if l < Line1 || l > Line5 {
		return false
	}
	return f.Links[l-1]
}
