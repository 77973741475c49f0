// internal/sensor/bus.go
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/gpu-panel/internal/transport"
)

// Default device addresses on the instrument bus.
const (
	DefaultControllerAddr uint16 = 0x40
	DefaultSensorAddr     uint16 = 0x41
	DefaultMCUAddr        uint16 = 0x42
)

// Config is the bus geometry.
type Config struct {
	SensorAddr     uint16
	ControllerAddr uint16
	Register       byte
}

// Bus turns raw register reads into typed readings.
// Every failure is logged and absorbed here; callers only ever see
// absent values or defaults.
type Bus struct {
	tr  transport.Transport
	cfg Config
	log logrus.FieldLogger

	unavailableOnce sync.Once
}

// New builds a Bus. Zero addresses select the defaults.
func New(tr transport.Transport, cfg Config, log logrus.FieldLogger) (*Bus, error) {
	if tr == nil {
		return nil, errors.New("sensor: transport required")
	}
	if cfg.SensorAddr == 0 {
		cfg.SensorAddr = DefaultSensorAddr
	}
	if cfg.ControllerAddr == 0 {
		cfg.ControllerAddr = DefaultControllerAddr
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{tr: tr, cfg: cfg, log: log}, nil
}

// ReadSnapshot performs exactly one block read.
// ok is false when the bus is unavailable, the read failed or was short.
func (b *Bus) ReadSnapshot(ctx context.Context) (Snapshot, bool) {
	s, err := b.readSnapshot(ctx)
	if err != nil {
		b.logReadError(err)
		return Snapshot{}, false
	}
	return s, true
}

func (b *Bus) readSnapshot(ctx context.Context) (Snapshot, error) {
	block, err := b.tr.Read(ctx, b.cfg.SensorAddr, b.cfg.Register, BlockLength)
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(block)
}

// Voltage reads the bus and returns the voltage of channel ch.
func (b *Bus) Voltage(ctx context.Context, ch int) (int, bool) {
	s, ok := b.ReadSnapshot(ctx)
	if !ok {
		return 0, false
	}
	return s.Voltage(ch)
}

// Current reads the bus and returns the current of channel ch.
func (b *Bus) Current(ctx context.Context, ch int) (int, bool) {
	s, ok := b.ReadSnapshot(ctx)
	if !ok {
		return 0, false
	}
	return s.Current(ch)
}

// IsPowerOn reports whether channel ch shows a positive voltage.
func (b *Bus) IsPowerOn(ctx context.Context, ch int) bool {
	v, ok := b.Voltage(ctx, ch)
	return ok && v > 0
}

// GaugeValues never fails: a missing snapshot reads as all zero.
func (b *Bus) GaugeValues(ctx context.Context) Gauges {
	s, ok := b.ReadSnapshot(ctx)
	if !ok {
		return Gauges{}
	}
	return s.Gauges()
}

// BatteryFull is false for both "not full" and "unknown".
func (b *Bus) BatteryFull(ctx context.Context) bool {
	s, ok := b.ReadSnapshot(ctx)
	return ok && s.BatteryFull()
}

// SendCommand writes cmd byte by byte to the controller.
// The first failing byte aborts the rest of the command; nothing is retried
// or undone. The error is logged and also returned for inspection.
func (b *Bus) SendCommand(ctx context.Context, cmd []byte) error {
	for i, c := range cmd {
		if err := b.tr.SendByte(ctx, b.cfg.ControllerAddr, c); err != nil {
			err = fmt.Errorf("sensor: command byte %d/%d: %w", i+1, len(cmd), err)
			if errors.Is(err, transport.ErrUnavailable) {
				b.logUnavailable(err)
			} else {
				b.log.WithFields(logrus.Fields{
					"device": fmt.Sprintf("0x%02x", b.cfg.ControllerAddr),
					"byte":   fmt.Sprintf("0x%02x", c),
				}).WithError(err).Error("command aborted")
			}
			return err
		}
		b.log.WithFields(logrus.Fields{
			"device": fmt.Sprintf("0x%02x", b.cfg.ControllerAddr),
			"byte":   fmt.Sprintf("0x%02x", c),
		}).Debug("command byte sent")
	}
	return nil
}

func (b *Bus) logReadError(err error) {
	if errors.Is(err, transport.ErrUnavailable) {
		b.logUnavailable(err)
		return
	}
	b.log.WithField("device", fmt.Sprintf("0x%02x", b.cfg.SensorAddr)).
		WithError(err).Warn("sensor read failed")
}

// logUnavailable logs the dead bus once instead of once per read.
func (b *Bus) logUnavailable(err error) {
	b.unavailableOnce.Do(func() {
		b.log.WithError(err).Error("instrument bus not initialised; readings default to absent")
	})
}
