// Package interrupt turns an operator stop request (Ctrl-C, SIGTERM) into a
// latch the sampling loop can poll without blocking.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/estesp/peek/errdefs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Latch remembers that it fired until it is read, however late
type Latch struct {
	once sync.Once
	done chan struct{}
}

// NewLatch returns a latch that has not fired
func NewLatch() *Latch {
	return &Latch{done: make(chan struct{})}
}

// Fire trips the latch. Calls after the first are no-ops.
func (l *Latch) Fire() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Fired reports without blocking whether the latch has been tripped
func (l *Latch) Fired() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Done is closed when the latch fires
func (l *Latch) Done() <-chan struct{} {
	return l.done
}

// armed guards the process-wide signal disposition
var armed int32

// Handler owns the installed signal handler and the latch it trips
type Handler struct {
	*Latch

	signals chan os.Signal
	stop    chan struct{}
	wg      sync.WaitGroup
	stopped sync.Once
}

// Setup installs the interrupt handler. Only one handler may be armed at a
// time; a second Setup before Stop fails.
func Setup() (*Handler, error) {
	if !atomic.CompareAndSwapInt32(&armed, 0, 1) {
		return nil, errors.Wrap(errdefs.ErrSignalSetup, "handler already installed")
	}

	h := &Handler{
		Latch:   NewLatch(),
		signals: make(chan os.Signal, 1),
		stop:    make(chan struct{}),
	}
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	h.wg.Add(1)
	go h.loop()

	return h, nil
}

func (h *Handler) loop() {
	defer h.wg.Done()
	for {
		select {
		case sig := <-h.signals:
			if h.Fired() {
				log.Debugf("ignoring %v: already stopping", sig)
				continue
			}
			log.Infof("received %v, stopping", sig)
			h.Fire()
		case <-h.stop:
			return
		}
	}
}

// Stop uninstalls the handler. The latch keeps its state.
func (h *Handler) Stop() {
	h.stopped.Do(func() {
		signal.Stop(h.signals)
		close(h.stop)
		h.wg.Wait()
		atomic.StoreInt32(&armed, 0)
	})
}
