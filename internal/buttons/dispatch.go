// internal/buttons/dispatch.go
package buttons

import (
	"context"

	"github.com/sirupsen/logrus"
)

// CommandSender is the write side of the sensor bus.
type CommandSender interface {
	SendCommand(ctx context.Context, cmd []byte) error
}

// PowerToggler flips the panel power switch.
type PowerToggler interface {
	TogglePower(ctx context.Context) bool
}

// ActionRecorder shows the last button action on the panel.
type ActionRecorder interface {
	RecordAction(action string)
}

// Dispatcher is the single consumer of presses: it sends each button's
// command to the controller, one press at a time.
type Dispatcher struct {
	bus   CommandSender
	power   PowerToggler
	actions ActionRecorder
	log     logrus.FieldLogger
}

// NewDispatcher builds a dispatcher. power may be nil.
func NewDispatcher(bus CommandSender, power PowerToggler, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{bus: bus, power: power, log: log}
}

// RecordTo shows every handled press on r. Call it before Run.
func (d *Dispatcher) RecordTo(r ActionRecorder) { d.actions = r }

// Run handles presses until ctx is done or in is closed.
func (d *Dispatcher) Run(ctx context.Context, in <-chan Press) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-in:
			if !ok {
				return
			}
			d.Handle(ctx, p)
		}
	}
}

// Handle processes one press. Command failures are already logged by
// the bus and never stop the dispatcher.
func (d *Dispatcher) Handle(ctx context.Context, p Press) {
	cmd, ok := Command(p.Button)
	if !ok {
		d.log.WithField("button", p.Button).Warn("press on unknown button")
		return
	}

	log := d.log.WithFields(logrus.Fields{"button": p.Button, "pin": p.Pin})
	log.WithField("command", cmd).Info("button pressed")
	if d.actions != nil {
		d.actions.RecordAction(string(p.Button))
	}

	if err := d.bus.SendCommand(ctx, cmd); err != nil {
		log.WithError(err).Debug("command not delivered")
	}

	if p.Button == OnOff && d.power != nil {
		d.power.TogglePower(ctx)
	}
}
