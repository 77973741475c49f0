// cmd/panel/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/gpu-panel/internal/buttons"
	"github.com/tamzrod/gpu-panel/internal/config"
	"github.com/tamzrod/gpu-panel/internal/logging"
	"github.com/tamzrod/gpu-panel/internal/panel"
	"github.com/tamzrod/gpu-panel/internal/sensor"
	"github.com/tamzrod/gpu-panel/internal/sink"
	sinkmodbus "github.com/tamzrod/gpu-panel/internal/sink/modbus"
	"github.com/tamzrod/gpu-panel/internal/status"
	"github.com/tamzrod/gpu-panel/internal/transport"
	"github.com/tamzrod/gpu-panel/internal/transport/i2c"
	trmodbus "github.com/tamzrod/gpu-panel/internal/transport/modbus"
)

func main() {
	// --------------------
	// Load + validate config
	// --------------------

	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("could not load .env: %v", err)
	}

	var cfgPath string
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	log := logging.New(cfg.Log.Level, cfg.Log.Format)
	log.WithFields(logrus.Fields{
		"panel":     cfg.Panel.Name,
		"transport": cfg.Bus.Transport,
	}).Info("panel starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Bus
	// --------------------

	tr := openTransport(cfg.Bus, log)
	defer tr.Close()

	bus, err := sensor.New(tr, sensor.Config{
		SensorAddr:     cfg.Bus.SensorAddress,
		ControllerAddr: cfg.Bus.ControllerAddress,
		Register:       cfg.Bus.Register,
	}, log.WithField("component", "sensor"))
	if err != nil {
		log.Fatalf("sensor bus: %v", err)
	}

	// --------------------
	// Sinks
	// --------------------

	display := sink.NewLog(log.WithField("component", "display"))
	sinks := sink.Multi{display}

	if cfg.Mirror.Endpoint != "" {
		w, err := sinkmodbus.Dial(sinkmodbus.Config{
			Endpoint: cfg.Mirror.Endpoint,
			Timeout:  time.Duration(cfg.Mirror.TimeoutMs) * time.Millisecond,
			UnitID:   cfg.Mirror.UnitID,
			Addr:     status.BlockAddr(cfg.Mirror.BaseSlot),
		}, log.WithField("component", "mirror"))
		if err != nil {
			// the panel must keep running without its mirror
			log.WithError(err).WithField("endpoint", cfg.Mirror.Endpoint).Error("status mirror disabled")
		} else {
			defer w.Close()
			go w.Run(ctx)

			m, err := sink.NewMirror(cfg.Panel.Name, w)
			if err != nil {
				log.Fatalf("status mirror: %v", err)
			}
			sinks = append(sinks, m)
		}
	}

	// --------------------
	// Refresh cycle
	// --------------------

	cycle, err := panel.New(panel.Config{
		Interval: time.Duration(cfg.Panel.RefreshMs) * time.Millisecond,
	}, bus, sinks, log.WithField("component", "cycle"))
	if err != nil {
		log.Fatalf("refresh cycle: %v", err)
	}
	cycle.Start(ctx)

	// --------------------
	// Buttons (optional)
	// --------------------

	if cfg.Buttons.Enabled {
		startButtons(ctx, cfg.Buttons, bus, cycle, display, log)
	}

	<-ctx.Done()
	log.Info("panel stopping")
}

// openTransport never fails: a bus that cannot be opened becomes an
// Unavailable transport and every read reports absent values.
func openTransport(bc config.BusConfig, log *logrus.Logger) transport.Transport {
	timeout := time.Duration(bc.TimeoutMs) * time.Millisecond

	var (
		conn transport.Conn
		err  error
	)

	switch bc.Transport {
	case config.TransportI2C:
		conn, err = i2c.Open(bc.I2C.Bus)
	case config.TransportModbus:
		conn, err = trmodbus.New(trmodbus.Config{
			Endpoint:        bc.Modbus.Endpoint,
			Timeout:         timeout,
			BaudRate:        bc.Modbus.BaudRate,
			CommandRegister: bc.Modbus.CommandRegister,
		})
	default:
		log.Warn("no bus transport configured; panel shows absent readings")
		return transport.Unavailable{}
	}

	if err != nil {
		log.WithError(err).WithField("transport", bc.Transport).Error("bus open failed")
		return transport.Unavailable{Cause: err}
	}
	return transport.Guard(conn, timeout)
}

func startButtons(
	ctx context.Context,
	bc config.ButtonsConfig,
	bus *sensor.Bus,
	cycle *panel.Cycle,
	actions buttons.ActionRecorder,
	log *logrus.Logger,
) {
	wiring := make(map[buttons.Button]int, len(bc.Pins))
	for name, n := range bc.Pins {
		wiring[buttons.Button(name)] = n
	}

	pins, err := buttons.OpenPins(wiring)
	if err != nil {
		log.WithError(err).Error("buttons disabled")
		return
	}

	w := buttons.NewWorker(
		time.Duration(bc.DebounceMs)*time.Millisecond,
		log.WithField("component", "buttons"),
	)
	for b, p := range pins {
		w.Watch(ctx, b, p)
	}
	w.Start(ctx)

	d := buttons.NewDispatcher(bus, cycle, log.WithField("component", "dispatch"))
	d.RecordTo(actions)
	go d.Run(ctx, w.Events())
}
