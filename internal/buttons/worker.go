// internal/buttons/worker.go
package buttons

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDebounce matches the mechanical bounce of the panel buttons.
const DefaultDebounce = 300 * time.Millisecond

// edgePoll bounds each WaitForEdge so watchers notice cancellation.
const edgePoll = 200 * time.Millisecond

// Press is one debounced button press.
type Press struct {
	Button Button
	Pin    int
	At     time.Time
}

type edge struct {
	button Button
	pin    int
	level  bool
	at     time.Time
}

// Worker turns raw pin edges into debounced presses.
// Watchers never block: when the raw queue is full the edge is dropped
// and counted.
type Worker struct {
	debounce time.Duration
	log      logrus.FieldLogger

	rawQ chan edge
	outQ chan Press

	mu   sync.Mutex
	last map[Button]time.Time

	drops atomic.Uint32
	now   func() time.Time
}

// NewWorker creates a worker. A non-positive debounce selects DefaultDebounce.
func NewWorker(debounce time.Duration, log logrus.FieldLogger) *Worker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Worker{
		debounce: debounce,
		log:      log,
		rawQ:     make(chan edge, 16),
		outQ:     make(chan Press, 16),
		last:     map[Button]time.Time{},
		now:      time.Now,
	}
}

// Events delivers debounced presses.
func (w *Worker) Events() <-chan Press { return w.outQ }

// Drops returns the number of edges lost to a full queue.
func (w *Worker) Drops() uint32 { return w.drops.Load() }

// Watch waits for edges on p until ctx is done.
func (w *Worker) Watch(ctx context.Context, b Button, p Pin) {
	go func() {
		for ctx.Err() == nil {
			if !p.WaitForEdge(edgePoll) {
				continue
			}
			e := edge{button: b, pin: p.Number(), level: p.Read(), at: w.now()}
			select {
			case w.rawQ <- e:
			default:
				w.drops.Add(1)
			}
		}
	}()
}

// Start consumes raw edges until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-w.rawQ:
				if p, ok := w.handle(e); ok {
					select {
					case w.outQ <- p:
					default:
						// drop to protect the watchers if the consumer is slow
						w.drops.Add(1)
					}
				}
			}
		}
	}()
}

// handle applies the press filter: the line must read low (pull-up,
// pressed to ground) and the button must be outside its debounce window.
func (w *Worker) handle(e edge) (Press, bool) {
	if e.level {
		return Press{}, false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if last, ok := w.last[e.button]; ok && e.at.Sub(last) < w.debounce {
		w.log.WithField("button", e.button).Debug("bounce ignored")
		return Press{}, false
	}
	w.last[e.button] = e.at

	return Press{Button: e.button, Pin: e.pin, At: e.at}, true
}
