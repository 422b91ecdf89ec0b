package stats

import (
	"sync"

	"github.com/estesp/peek/errdefs"
	"github.com/estesp/peek/utils"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/cpu"
	log "github.com/sirupsen/logrus"
)

// PSUtilProvider reads process metrics through gopsutil. Handles are cached
// per pid since CPU usage is computed between two successive queries.
type PSUtilProvider struct {
	threads int

	mu     sync.Mutex
	procs  map[int]*utils.Proc
	noDisk map[int]bool
}

// NewPSUtilProvider creates a provider normalizing CPU usage by the number of
// logical CPUs of this machine
func NewPSUtilProvider() (*PSUtilProvider, error) {
	threads, err := cpu.Counts(true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count logical cpus")
	}
	if threads < 1 {
		threads = 1
	}
	return newPSUtilProvider(threads), nil
}

func newPSUtilProvider(threads int) *PSUtilProvider {
	return &PSUtilProvider{
		threads: threads,
		procs:   make(map[int]*utils.Proc),
		noDisk:  make(map[int]bool),
	}
}

// Threads returns the logical CPU count used for normalization
func (s *PSUtilProvider) Threads() int {
	return s.threads
}

// Exists reports whether a process with the given id is currently running
func (s *PSUtilProvider) Exists(pid int) (bool, error) {
	return utils.PIDExists(pid)
}

// Query gets the current metrics of a process
func (s *PSUtilProvider) Query(pid int) (*ProcMetrics, error) {
	proc, err := s.proc(pid)
	if err != nil {
		return nil, err
	}

	name, err := proc.Name()
	if err != nil {
		return nil, s.failure(pid, err, "couldn't get name for proc: %d", pid)
	}

	cpuPercent, err := proc.CPU()
	if err != nil {
		return nil, s.failure(pid, err, "couldn't get cpu info for proc: %d", pid)
	}

	rss, err := proc.Mem()
	if err != nil {
		return nil, s.failure(pid, err, "couldn't get mem info for proc: %d", pid)
	}

	vms, err := proc.VirtMem()
	if err != nil {
		return nil, s.failure(pid, err, "couldn't get virtual mem info for proc: %d", pid)
	}

	read, write, err := proc.IO()
	if err != nil {
		// /proc/<pid>/io is only readable by the owner of the process
		if gone := s.gone(pid); gone != nil {
			return nil, gone
		}
		s.mu.Lock()
		if !s.noDisk[pid] {
			s.noDisk[pid] = true
			log.WithError(err).Debugf("disk counters unavailable for proc: %d; reporting 0", pid)
		}
		s.mu.Unlock()
		read, write = 0, 0
	}

	return &ProcMetrics{
		Name:      name,
		CPU:       cpuPercent / float64(s.threads),
		RSS:       rss,
		VMS:       vms,
		DiskRead:  read,
		DiskWrite: write,
	}, nil
}

func (s *PSUtilProvider) proc(pid int) (*utils.Proc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.procs[pid]; ok {
		return p, nil
	}
	exists, err := utils.PIDExists(pid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Wrapf(errdefs.ErrNoSuchProcess, "pid %d", pid)
	}
	p, err := utils.NewProcFromPID(pid)
	if err != nil {
		return nil, errors.Wrapf(errdefs.ErrNoSuchProcess, "pid %d: %v", pid, err)
	}
	s.procs[pid] = p
	return p, nil
}

// failure classifies a read error, turning it into ErrNoSuchProcess when the
// process is gone
func (s *PSUtilProvider) failure(pid int, err error, format string, args ...interface{}) error {
	if gone := s.gone(pid); gone != nil {
		return gone
	}
	return errors.Wrapf(err, format, args...)
}

func (s *PSUtilProvider) gone(pid int) error {
	exists, err := utils.PIDExists(pid)
	if err == nil && exists {
		return nil
	}
	s.mu.Lock()
	delete(s.procs, pid)
	delete(s.noDisk, pid)
	s.mu.Unlock()
	return errors.Wrapf(errdefs.ErrNoSuchProcess, "pid %d", pid)
}
