// internal/panel/cycle.go
package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/gpu-panel/internal/sensor"
)

// DefaultInterval is the refresh period of the panel.
const DefaultInterval = time.Second

// SnapshotSource is the read side of the sensor bus.
type SnapshotSource interface {
	ReadSnapshot(ctx context.Context) (sensor.Snapshot, bool)
}

// Config is the minimal runtime config of the cycle.
type Config struct {
	Interval time.Duration
}

// Cycle drives snapshot -> frame -> sink on a fixed schedule while the
// panel is powered. One bus read per tick feeds the whole frame.
//
// RUNNING: every tick reads, pushes, and re-arms the timer.
// STOPPED: one tick pushes OffFrame and does not re-arm; only Start
// resumes the cycle.
type Cycle struct {
	cfg   Config
	src   SnapshotSource
	sink  Sink
	log   logrus.FieldLogger
	power PowerState

	tickMu sync.Mutex // held for the duration of one tick

	runMu   sync.Mutex
	running bool

	lastMu sync.RWMutex
	last   Frame
	ticks  uint64
}

// New creates a cycle. It does not start it.
func New(cfg Config, src SnapshotSource, sink Sink, log logrus.FieldLogger) (*Cycle, error) {
	if src == nil {
		return nil, errors.New("panel: snapshot source required")
	}
	if sink == nil {
		return nil, errors.New("panel: sink required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("panel: interval must be > 0")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cycle{cfg: cfg, src: src, sink: sink, log: log}, nil
}

// Power exposes the on/off switch.
func (c *Cycle) Power() *PowerState { return &c.power }

// TogglePower flips the power switch. Switching on re-starts the
// schedule; switching off lets the next tick push the off frame.
func (c *Cycle) TogglePower(ctx context.Context) bool {
	on := c.power.Toggle()
	c.log.WithField("power", on).Info("power toggled")
	if on {
		c.Start(ctx)
	}
	return on
}

// Running reports whether the schedule is armed.
func (c *Cycle) Running() bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.running
}

// Last returns the most recently pushed frame and the number of ticks run.
func (c *Cycle) Last() (Frame, uint64) {
	c.lastMu.RLock()
	defer c.lastMu.RUnlock()
	return c.last, c.ticks
}

// Tick runs one refresh. The power state is sampled once, at the start:
// switching off mid-tick takes effect on the next tick.
//
// rearm is true when the cycle should schedule another tick.
// ran is false when nothing was pushed: another tick was still in
// progress (skip-if-busy), or ctx ended during the read.
func (c *Cycle) Tick(ctx context.Context) (rearm, ran bool) {
	if !c.tickMu.TryLock() {
		// the running tick owns this boundary; a later one pushes the off frame
		c.log.Debug("refresh skipped: previous tick still running")
		return true, false
	}
	defer c.tickMu.Unlock()

	on := c.power.On()

	var f Frame
	if on {
		s, ok := c.src.ReadSnapshot(ctx)
		if ctx.Err() != nil {
			return false, false
		}
		f = DeriveFrame(s, ok)
	} else {
		f = OffFrame()
	}

	if err := Push(c.sink, f); err != nil {
		c.log.WithError(err).Warn("display commit failed")
	}

	c.lastMu.Lock()
	c.last = f
	c.ticks++
	c.lastMu.Unlock()

	return on, true
}

// Start arms the schedule with an immediate first tick.
// It returns false if the cycle is already running.
func (c *Cycle) Start(ctx context.Context) bool {
	c.runMu.Lock()
	if c.running {
		c.runMu.Unlock()
		return false
	}
	c.running = true
	c.runMu.Unlock()

	c.log.WithField("interval", c.cfg.Interval).Info("refresh cycle started")
	go c.loop(ctx)
	return true
}

func (c *Cycle) loop(ctx context.Context) {
	for {
		rearm, _ := c.Tick(ctx)

		if !rearm && c.halt(ctx) {
			c.log.Info("refresh cycle stopped")
			return
		}

		timer := time.NewTimer(c.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.halt(ctx)
			return
		case <-timer.C:
		}
	}
}

// halt clears the running flag unless power came back on meanwhile,
// in which case the schedule stays armed and halt returns false.
func (c *Cycle) halt(ctx context.Context) bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if ctx.Err() == nil && c.power.On() {
		return false
	}
	c.running = false
	return true
}
