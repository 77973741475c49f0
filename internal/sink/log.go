// internal/sink/log.go
package sink

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tamzrod/gpu-panel/internal/panel"
)

// noAction is shown until the first button press.
const noAction = "-"

// Log renders frames as log lines: info when the frame or the last
// action changed, debug otherwise.
type Log struct {
	frameBuffer

	log        logrus.FieldLogger
	last       panel.Frame
	lastAction string
	valid      bool

	actionMu sync.Mutex
	action   string
}

func NewLog(log logrus.FieldLogger) *Log {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Log{log: log, action: noAction}
}

// RecordAction sets the action box. The next frame shows it.
func (l *Log) RecordAction(action string) {
	l.actionMu.Lock()
	l.action = action
	l.actionMu.Unlock()
}

func (l *Log) Commit() error {
	f := l.Frame()

	l.actionMu.Lock()
	action := l.action
	l.actionMu.Unlock()

	entry := l.log.WithFields(Fields(f)).WithField("action", action)
	if l.valid && f == l.last && action == l.lastAction {
		entry.Debug("panel unchanged")
		return nil
	}
	entry.Info("panel updated")

	l.last = f
	l.lastAction = action
	l.valid = true
	return nil
}

// Fields renders a frame the way the panel labels show it.
func Fields(f panel.Frame) logrus.Fields {
	out := logrus.Fields{
		"power":   onOff(f.On),
		"fuel":    f.Gauges.Fuel,
		"oil":     f.Gauges.Oil,
		"rpm":     f.Gauges.RPM,
		"battery": "not full",
		"links":   activeLinks(f),
	}
	if f.BatteryFull {
		out["battery"] = "full"
	}
	for i, ch := range f.Channels {
		out[fmt.Sprintf("s%d", i+1)] = ch.Voltage.Format("V", "OFF") + "/" + ch.Current.Format("A", "-")
	}
	return out
}

func activeLinks(f panel.Frame) string {
	var on []string
	for _, l := range panel.Links {
		if f.LinkActive(l) {
			on = append(on, l.String())
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
