// internal/sink/mirror.go
package sink

import (
	"errors"

	"github.com/tamzrod/gpu-panel/internal/status"
)

// Mirror copies every display frame into the panel status block.
// Delivery belongs to the queue; Commit only encodes and hands over.
type Mirror struct {
	frameBuffer

	out      blockQueue
	nameRegs []uint16
}

// NewMirror builds the mirror sink. deviceName fills the name slots.
func NewMirror(deviceName string, out blockQueue) (*Mirror, error) {
	if out == nil {
		return nil, errors.New("mirror: block queue required")
	}
	return &Mirror{
		out:      out,
		nameRegs: status.EncodeDeviceName(deviceName),
	}, nil
}

// Commit queues the block image of the buffered frame.
func (m *Mirror) Commit() error {
	m.WriteStatus(status.FromFrame(m.Frame()))
	return nil
}

// WriteStatus queues s with the device name.
func (m *Mirror) WriteStatus(s status.Snapshot) {
	m.out.Submit(status.EncodeFull(s, m.nameRegs))
}
