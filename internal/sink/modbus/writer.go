// internal/sink/modbus/writer.go
package modbus

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goburrow/modbus"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds one mirror request when none is configured.
const DefaultTimeout = 500 * time.Millisecond

// Config places one register block on one Modbus TCP endpoint.
type Config struct {
	Endpoint string
	Timeout  time.Duration
	UnitID   uint8
	Addr     uint16 // first holding register of the block
}

// RegisterClient is the part of modbus.Client the writer drives.
type RegisterClient interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
}

// BlockWriter delivers register block images from its own goroutine.
//
// Submit never blocks: one image waits at most, and a newer image
// replaces it. Run writes the whole block first and after any failure;
// otherwise it writes only the runs of registers that changed since the
// last delivered image.
type BlockWriter struct {
	cli    RegisterClient
	closer io.Closer
	addr   uint16
	log    logrus.FieldLogger

	pending  chan []uint16
	dropped  atomic.Uint64
	needFull atomic.Bool

	last []uint16 // owned by Run

	closeOnce sync.Once
}

// Dial connects to cfg.Endpoint. The unit id is fixed for the connection.
func Dial(cfg Config, log logrus.FieldLogger) (*BlockWriter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("mirror: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("mirror: connect %s: %w", cfg.Endpoint, err)
	}

	w := NewBlockWriter(modbus.NewClient(h), cfg.Addr, log)
	w.closer = h
	return w, nil
}

// NewBlockWriter builds a writer on an existing client.
func NewBlockWriter(cli RegisterClient, addr uint16, log logrus.FieldLogger) *BlockWriter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &BlockWriter{
		cli:     cli,
		addr:    addr,
		log:     log,
		pending: make(chan []uint16, 1),
	}
	w.needFull.Store(true)
	return w
}

// Submit queues a copy of regs, replacing any image not yet written.
func (w *BlockWriter) Submit(regs []uint16) {
	img := append([]uint16(nil), regs...)
	for {
		select {
		case w.pending <- img:
			return
		default:
		}
		select {
		case <-w.pending:
			w.dropped.Add(1)
		default:
		}
	}
}

// Run writes queued images until ctx is done.
func (w *BlockWriter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case img := <-w.pending:
			if err := w.write(img); err != nil {
				w.log.WithError(err).Warn("status mirror write failed; next write re-asserts the block")
			}
		}
	}
}

// NeedsFull reports whether the next write re-asserts the whole block.
func (w *BlockWriter) NeedsFull() bool { return w.needFull.Load() }

// Dropped returns the number of images replaced before they were written.
func (w *BlockWriter) Dropped() uint64 { return w.dropped.Load() }

// Close closes the connection opened by Dial.
func (w *BlockWriter) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.closer != nil {
			err = w.closer.Close()
		}
	})
	return err
}

func (w *BlockWriter) write(img []uint16) error {
	if w.needFull.Load() || len(img) != len(w.last) {
		if err := w.send(0, img); err != nil {
			w.needFull.Store(true)
			return fmt.Errorf("mirror: block write: %w", err)
		}
		w.needFull.Store(false)
		w.last = img
		return nil
	}

	var errs []error
	for start := 0; start < len(img); {
		if img[start] == w.last[start] {
			start++
			continue
		}
		end := start + 1
		for end < len(img) && img[end] != w.last[end] {
			end++
		}
		if err := w.send(start, img[start:end]); err != nil {
			errs = append(errs, fmt.Errorf("mirror: registers %d-%d: %w", start, end-1, err))
		}
		start = end
	}
	if len(errs) > 0 {
		// a partial update leaves the peer in an unknown state
		w.needFull.Store(true)
		return errors.Join(errs...)
	}

	w.last = img
	return nil
}

func (w *BlockWriter) send(off int, regs []uint16) error {
	payload := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(payload[2*i:], r)
	}
	_, err := w.cli.WriteMultipleRegisters(w.addr+uint16(off), uint16(len(regs)), payload)
	return err
}
