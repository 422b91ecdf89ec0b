package sampler

import (
	"time"

	"github.com/estesp/peek/stats"
	"github.com/estesp/peek/target"
	"github.com/google/uuid"
)

// State represents the state of a sampling run
type State int

// State constants
const (
	// Running represents a loop still collecting samples
	Running State = iota
	// StoppedByExit represents a run ended because the target exited
	StoppedByExit
	// StoppedByInterrupt represents a run ended by the operator
	StoppedByInterrupt
	// StoppedByError represents a run ended by a failed metrics query
	StoppedByError
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case StoppedByExit:
		return "stopped-by-exit"
	case StoppedByInterrupt:
		return "stopped-by-interrupt"
	case StoppedByError:
		return "stopped-by-error"
	default:
		return "(unknown)"
	}
}

// Sample is one measurement of the target. Field order is the output record order.
type Sample struct {
	RunID     uuid.UUID `json:"uuid"`
	Sequence  uint64    `json:"sample"`
	PID       int       `json:"pid"`
	Name      string    `json:"name"`
	CPU       float64   `json:"cpu"`
	Mem       uint64    `json:"mem"`
	VirtMem   uint64    `json:"virt_mem"`
	DiskRead  uint64    `json:"disk_read"`
	DiskWrite uint64    `json:"disk_write"`
	Timestamp time.Time `json:"-"`
}

// Run is one execution of peek against one target
type Run struct {
	ID      uuid.UUID
	PID     int
	Owned   bool
	Samples []Sample
	State   State
	// Err is set when State is StoppedByError
	Err error
	// ExitStatus is set when State is StoppedByExit
	ExitStatus *target.ExitStatus
	Started    time.Time
	Finished   time.Time
}

// Elapsed returns how long the loop ran
func (r *Run) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// CPU returns the CPU reading of each sample in order
func (r *Run) CPU() []float64 {
	out := make([]float64, 0, len(r.Samples))
	for _, s := range r.Samples {
		out = append(out, s.CPU)
	}
	return out
}

// Mem returns the resident memory reading of each sample in order
func (r *Run) Mem() []uint64 {
	out := make([]uint64, 0, len(r.Samples))
	for _, s := range r.Samples {
		out = append(out, s.Mem)
	}
	return out
}

// buffer is the append-only sample store of a run; sequence numbers are
// assigned here so they stay contiguous
type buffer struct {
	runID   uuid.UUID
	pid     int
	samples []Sample
}

func newBuffer(runID uuid.UUID, pid int) *buffer {
	return &buffer{
		runID:   runID,
		pid:     pid,
		samples: make([]Sample, 0, 1024),
	}
}

func (b *buffer) add(m *stats.ProcMetrics, at time.Time) {
	b.samples = append(b.samples, Sample{
		RunID:     b.runID,
		Sequence:  uint64(len(b.samples)),
		PID:       b.pid,
		Name:      m.Name,
		CPU:       m.CPU,
		Mem:       m.RSS,
		VirtMem:   m.VMS,
		DiskRead:  m.DiskRead,
		DiskWrite: m.DiskWrite,
		Timestamp: at,
	})
}
