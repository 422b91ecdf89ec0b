package stats

// ProcMetrics represents one reading of a process' resource usage
type ProcMetrics struct {
	// Name is the executable name of the process
	Name string
	// CPU is usage in percent of a single core, normalized by logical CPU count
	CPU float64
	// RSS is resident memory in bytes
	RSS uint64
	// VMS is virtual memory in bytes
	VMS uint64
	// DiskRead is cumulative bytes read from disk
	DiskRead uint64
	// DiskWrite is cumulative bytes written to disk
	DiskWrite uint64
}

// Provider represents a source of live per-process metrics
type Provider interface {
	// Exists reports whether a process with the given id is currently running
	Exists(pid int) (bool, error)

	// Query gets the current metrics of a process. When the process no longer
	// exists the error satisfies errdefs.IsNoSuchProcess.
	Query(pid int) (*ProcMetrics, error)
}
