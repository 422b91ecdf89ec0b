// Package sampler runs the polling loop that samples one process until it
// exits, disappears, or the operator interrupts.
package sampler

import (
	"time"

	"github.com/estesp/peek/errdefs"
	"github.com/estesp/peek/stats"
	"github.com/estesp/peek/target"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// MinimumInterval is the shortest interval giving meaningful CPU deltas
	MinimumInterval = 200 * time.Millisecond
	// DefaultInterval is the sampling interval used when none is configured
	DefaultInterval = MinimumInterval

	reapGrace = time.Second
)

// Target represents the process being sampled
type Target interface {
	// PID returns the process id
	PID() int

	// Owned returns true if the process was spawned by peek
	Owned() bool

	// Exited delivers the exit status once the process ends
	Exited() <-chan target.ExitStatus

	// Kill terminates the process, best effort
	Kill() error
}

// Interrupt represents an operator stop request
type Interrupt interface {
	// Fired reports without blocking whether a stop was requested
	Fired() bool
}

// Sampler polls a metrics provider at a fixed interval
type Sampler struct {
	provider stats.Provider
	interval time.Duration
	sleep    func(time.Duration)
	now      func() time.Time
}

// Option configures a Sampler
type Option func(*Sampler)

// WithInterval sets the pause between two samples
func WithInterval(d time.Duration) Option {
	return func(s *Sampler) {
		s.interval = d
	}
}

// WithSleep replaces time.Sleep as the pause between samples
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Sampler) {
		s.sleep = sleep
	}
}

// New creates a Sampler reading metrics from provider
func New(provider stats.Provider, opts ...Option) *Sampler {
	s := &Sampler{
		provider: provider,
		interval: DefaultInterval,
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Interval returns the pause between two samples
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Run samples t until it exits, disappears or irq fires. The returned Run is
// never nil and holds every sample taken, whatever the cause of the stop.
func (s *Sampler) Run(t Target, irq Interrupt) *Run {
	run := &Run{
		ID:      uuid.New(),
		PID:     t.PID(),
		Owned:   t.Owned(),
		State:   Running,
		Started: s.now(),
	}
	buf := newBuffer(run.ID, run.PID)

	log.WithFields(log.Fields{
		"run":      run.ID,
		"pid":      run.PID,
		"interval": s.interval,
	}).Info("sampling started")

	for run.State == Running {
		select {
		case status := <-t.Exited():
			run.State = StoppedByExit
			run.ExitStatus = &status
			log.Infof("pid %d exited with code %d", run.PID, status.Code)
			continue
		default:
		}

		metrics, err := s.provider.Query(run.PID)
		if err != nil {
			if status, ok := s.reaped(t, err); ok {
				run.State = StoppedByExit
				run.ExitStatus = &status
				log.Infof("pid %d exited with code %d", run.PID, status.Code)
				continue
			}
			run.State = StoppedByError
			if errdefs.IsNoSuchProcess(err) {
				run.Err = errors.Wrapf(errdefs.ErrProcessDisappeared, "pid %d after %d samples", run.PID, len(buf.samples))
			} else {
				run.Err = errors.Wrapf(err, "query pid %d", run.PID)
			}
			log.WithError(err).Warnf("sampling pid %d failed", run.PID)
			continue
		}

		buf.add(metrics, s.now())

		if irq.Fired() {
			run.State = StoppedByInterrupt
			if run.Owned {
				// failures are logged by the target; the process may be gone already
				_ = t.Kill()
			} else {
				log.Infof("leaving attached pid %d running", run.PID)
			}
			continue
		}

		s.sleep(s.interval)
	}

	run.Samples = buf.samples
	run.Finished = s.now()

	log.WithFields(log.Fields{
		"run":     run.ID,
		"samples": len(run.Samples),
		"state":   run.State,
		"elapsed": run.Elapsed(),
	}).Info("sampling stopped")

	return run
}

// reaped handles a spawned target vanishing between the exit check and the
// query: its process table entry is only removed once peek reaped it, so
// the exit status is already on its way.
func (s *Sampler) reaped(t Target, err error) (target.ExitStatus, bool) {
	if !t.Owned() || !errdefs.IsNoSuchProcess(err) {
		return target.ExitStatus{}, false
	}
	timer := time.NewTimer(reapGrace)
	defer timer.Stop()
	select {
	case status := <-t.Exited():
		return status, true
	case <-timer.C:
		return target.ExitStatus{}, false
	}
}
