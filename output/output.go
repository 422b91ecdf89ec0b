// Package output renders a finished run and writes it to its destination.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/estesp/peek/errdefs"
	"github.com/estesp/peek/sampler"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Format represents an output encoding
type Format int

const (
	// JSON renders the run as one array of sample records
	JSON Format = iota
	// CSV is accepted as a selector but not implemented yet
	CSV
)

// Destination represents where the rendered run goes
type Destination int

const (
	// Stdout writes to the standard output stream
	Stdout Destination = iota
	// File writes to a file path
	File
)

// FormatToString converts a Format into its string representation
func FormatToString(f Format) string {
	switch f {
	case JSON:
		return "json"
	case CSV:
		return "csv"
	default:
		return "(unknown)"
	}
}

// StringToFormat converts a format name into its Format
func StringToFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	default:
		return JSON, errors.Wrapf(errdefs.ErrConfiguration, "unknown output format %q", s)
	}
}

// DestinationToString converts a Destination into its string representation
func DestinationToString(d Destination) string {
	switch d {
	case Stdout:
		return "stdout"
	case File:
		return "file"
	default:
		return "(unknown)"
	}
}

// StringToDestination converts a destination name into its Destination
func StringToDestination(s string) (Destination, error) {
	switch strings.ToLower(s) {
	case "stdout":
		return Stdout, nil
	case "file":
		return File, nil
	default:
		return Stdout, errors.Wrapf(errdefs.ErrConfiguration, "unknown output destination %q", s)
	}
}

// DefaultPath returns peek.<format> in the current working directory
func DefaultPath(f Format) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get working directory")
	}
	return filepath.Join(cwd, fmt.Sprintf("peek.%s", FormatToString(f))), nil
}

// Sink consumes a finished run
type Sink interface {
	// Write renders and emits run. It fails for a run still sampling and
	// accepts at most one run.
	Write(run *sampler.Run) error
}

// Options configures a Sink
type Options struct {
	Format      Format
	Destination Destination
	// Path is the output file; empty means DefaultPath
	Path string
	// Stdout is used for the Stdout destination; nil means os.Stdout
	Stdout io.Writer
}

type sink struct {
	format  Format
	dest    Destination
	path    string
	stdout  io.Writer
	written bool
}

// New creates a Sink
func New(opts Options) (Sink, error) {
	s := &sink{
		format: opts.Format,
		dest:   opts.Destination,
		path:   opts.Path,
		stdout: opts.Stdout,
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	switch s.dest {
	case Stdout:
	case File:
		if s.path == "" {
			path, err := DefaultPath(s.format)
			if err != nil {
				return nil, errors.Wrapf(errdefs.ErrOutput, "%v", err)
			}
			s.path = path
		}
	default:
		return nil, errors.Wrapf(errdefs.ErrConfiguration, "no such destination: %v", s.dest)
	}
	return s, nil
}

func (s *sink) Write(run *sampler.Run) error {
	if run == nil {
		return errors.Wrap(errdefs.ErrOutput, "no run to write")
	}
	if run.State == sampler.Running {
		return errors.Wrap(errdefs.ErrOutput, "run is still sampling")
	}
	if s.written {
		return errors.Wrap(errdefs.ErrOutput, "sink already consumed a run")
	}

	data, err := Render(s.format, run.Samples)
	if err != nil {
		return err
	}

	switch s.dest {
	case Stdout:
		if _, err := s.stdout.Write(data); err != nil {
			return errors.Wrapf(errdefs.ErrOutput, "stdout: %v", err)
		}
	case File:
		if err := writeFile(s.path, data); err != nil {
			return err
		}
		log.Infof("wrote %d samples to %s", len(run.Samples), s.path)
	}
	s.written = true
	return nil
}

// Supported returns an error if runs cannot be rendered in the given format
func Supported(f Format) error {
	_, err := Render(f, nil)
	return err
}

// Render encodes samples in the given format. Nothing is written anywhere.
func Render(f Format, samples []sampler.Sample) ([]byte, error) {
	switch f {
	case JSON:
		return renderJSON(samples)
	case CSV:
		return nil, errors.Wrap(errdefs.ErrNotImplemented, "csv output")
	default:
		return nil, errors.Wrapf(errdefs.ErrConfiguration, "no such format: %v", f)
	}
}

func renderJSON(samples []sampler.Sample) ([]byte, error) {
	if samples == nil {
		samples = []sampler.Sample{}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(samples); err != nil {
		return nil, errors.Wrapf(errdefs.ErrOutput, "json: %v", err)
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errdefs.ErrOutput, "create %s: %v", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(errdefs.ErrOutput, "write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(errdefs.ErrOutput, "close %s: %v", path, err)
	}
	return nil
}
