// internal/buttons/table.go
package buttons

// Button names a panel push button.
type Button string

const (
	OnOff     Button = "on_off"
	Start     Button = "start"
	Emergency Button = "emergency"
	S1        Button = "s1"
	S2        Button = "s2"
	S3        Button = "s3"
)

// All lists the buttons in panel order.
var All = []Button{OnOff, Start, Emergency, S1, S2, S3}

// DefaultPins is the BCM wiring of the panel.
var DefaultPins = map[Button]int{
	OnOff:     17,
	Start:     27,
	Emergency: 22,
	S1:        10,
	S2:        9,
	S3:        11,
}

// commands is the controller command sent for each button.
// The table is fixed by the controller firmware.
var commands = map[Button][3]byte{
	OnOff:     {0x01, 0x02, 0x03},
	Start:     {0x04, 0x05, 0x06},
	Emergency: {0x07, 0x08, 0x09},
	S1:        {0x10, 0x11, 0x12},
	S2:        {0x13, 0x14, 0x15},
	S3:        {0x16, 0x17, 0x18},
}

// Command returns the command bytes of b.
func Command(b Button) ([]byte, bool) {
	c, ok := commands[b]
	if !ok {
		return nil, false
	}
	return c[:], true
}

// Known reports whether b is a panel button.
func Known(b Button) bool {
	_, ok := commands[b]
	return ok
}
