package utils

import (
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/process"
)

// Proc wraps a gopsutil process handle. A Proc keeps the previous CPU
// reading, so the same Proc must be reused between successive CPU calls.
type Proc struct {
	proc *process.Process
}

// NewProcFromPID returns a handle for a running process
func NewProcFromPID(pid int) (*Proc, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, err
	}

	return &Proc{p}, nil
}

// PIDExists reports whether a process with the given id is currently running
func PIDExists(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return false, errors.Wrapf(err, "failed to check pid %d", pid)
	}
	return exists, nil
}

// PID returns process id
func (p *Proc) PID() int {
	return int(p.proc.Pid)
}

// Name returns the executable name of the process
func (p *Proc) Name() (string, error) {
	return p.proc.Name()
}

// Mem returns resident memory usage in bytes
func (p *Proc) Mem() (uint64, error) {
	stat, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}

	return stat.RSS, nil
}

// VirtMem returns virtual memory size in bytes
func (p *Proc) VirtMem() (uint64, error) {
	stat, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}

	return stat.VMS, nil
}

// IO returns cumulative bytes read from and written to disk
func (p *Proc) IO() (read, write uint64, err error) {
	stat, err := p.proc.IOCounters()
	if err != nil {
		return 0, 0, err
	}

	return stat.ReadBytes, stat.WriteBytes, nil
}

// CPU returns how many percents of the CPU a process uses between this and previous call
func (p *Proc) CPU() (float64, error) {
	return p.proc.Percent(0)
}

// Kill sends SIGKILL to the process
func (p *Proc) Kill() error {
	return p.proc.Kill()
}
