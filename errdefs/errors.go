// Package errdefs defines the error classes reported by peek. Callers wrap
// these with github.com/pkg/errors to add context and test for a class with
// the IsX helpers, which see through any amount of wrapping.
package errdefs

import "github.com/pkg/errors"

var (
	// ErrConfiguration is returned when the program specification is missing
	// or contradictory. Nothing has been started when it is reported.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrSpawn is returned when the target executable cannot be launched
	ErrSpawn = errors.New("failed to spawn target")

	// ErrNoSuchProcess is returned when the target process does not exist
	ErrNoSuchProcess = errors.New("no such process")

	// ErrProcessDisappeared is returned when the target vanished while it was
	// being sampled. It is a form of ErrNoSuchProcess.
	ErrProcessDisappeared = errors.New("process disappeared")

	// ErrSignalSetup is returned when the interrupt handler cannot be installed
	ErrSignalSetup = errors.New("failed to install interrupt handler")

	// ErrOutput is returned when a finished run cannot be emitted
	ErrOutput = errors.New("failed to write output")

	// ErrNotImplemented is returned for accepted but unimplemented selectors
	ErrNotImplemented = errors.New("not implemented")
)

// IsConfiguration returns true if the error is due to a bad program specification
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsSpawn returns true if the error is due to a failed launch
func IsSpawn(err error) bool {
	return errors.Is(err, ErrSpawn)
}

// IsNoSuchProcess returns true if the target was never found or disappeared
func IsNoSuchProcess(err error) bool {
	return errors.Is(err, ErrNoSuchProcess) || errors.Is(err, ErrProcessDisappeared)
}

// IsProcessDisappeared returns true only if the target vanished mid-run
func IsProcessDisappeared(err error) bool {
	return errors.Is(err, ErrProcessDisappeared)
}

// IsSignalSetup returns true if the interrupt handler could not be installed
func IsSignalSetup(err error) bool {
	return errors.Is(err, ErrSignalSetup)
}

// IsOutput returns true if the error happened while emitting a run
func IsOutput(err error) bool {
	return errors.Is(err, ErrOutput)
}

// IsNotImplemented returns true if the error is due to an unimplemented feature
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}
