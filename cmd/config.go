// Copyright © 2016 Phil Estes
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/estesp/peek/errdefs"
	"github.com/estesp/peek/output"
	"github.com/estesp/peek/sampler"
	"github.com/estesp/peek/target"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML document accepted by --config
type fileConfig struct {
	Program  string        `yaml:"program"`
	PID      *int          `yaml:"pid"`
	Output   string        `yaml:"output"`
	Path     string        `yaml:"path"`
	Format   string        `yaml:"format"`
	Interval time.Duration `yaml:"interval"`
}

// runConfig is the validated configuration of one run
type runConfig struct {
	// either Command or PID is set
	Command *target.Command
	PID     int

	Format      output.Format
	Destination output.Destination
	Path        string
	Interval    time.Duration
}

// flagValues are the raw run command inputs; set records which flags the
// operator passed explicitly
type flagValues struct {
	args     []string
	pid      int
	output   string
	path     string
	format   string
	interval time.Duration
	set      map[string]bool
}

func readYaml(filename string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("Can't read YAML file %q: %v", filename, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("Can't unmarshal YAML file %q: %v", filename, err)
	}
	return cfg, nil
}

// buildConfig merges file values under explicitly set flags and validates
// the result. Nothing is started here.
func buildConfig(file fileConfig, fv flagValues) (*runConfig, error) {
	outputName, formatName, path, interval := "stdout", "json", "", sampler.DefaultInterval
	if file.Output != "" {
		outputName = file.Output
	}
	if file.Format != "" {
		formatName = file.Format
	}
	if file.Path != "" {
		path = file.Path
	}
	if file.Interval != 0 {
		interval = file.Interval
	}
	if fv.set["output"] {
		outputName = fv.output
	}
	if fv.set["format"] {
		formatName = fv.format
	}
	if fv.set["path"] {
		path = fv.path
	}
	if fv.set["interval"] {
		interval = fv.interval
	}

	// a program specification on the command line replaces the file's
	program, pid := file.Program, file.PID
	if len(fv.args) > 0 || fv.set["pid"] {
		program, pid = "", nil
		if fv.set["pid"] {
			p := fv.pid
			pid = &p
		}
	}
	var programArgs []string
	if len(fv.args) > 0 {
		programArgs = fv.args
	} else if program != "" {
		programArgs = []string{program}
	}

	cfg := &runConfig{Path: path, Interval: interval}
	switch {
	case len(programArgs) > 0 && pid != nil:
		return nil, errors.Wrap(errdefs.ErrConfiguration, "specify either a program or --pid, not both")
	case len(programArgs) == 0 && pid == nil:
		return nil, errors.Wrap(errdefs.ErrConfiguration, "specify a program to run or a --pid to attach to")
	case pid != nil:
		cfg.PID = *pid
	default:
		name, args, err := target.ParseCommand(programArgs)
		if err != nil {
			return nil, err
		}
		cfg.Command = &target.Command{Name: name, Args: args}
	}

	var err error
	if cfg.Format, err = output.StringToFormat(formatName); err != nil {
		return nil, err
	}
	if cfg.Destination, err = output.StringToDestination(outputName); err != nil {
		return nil, err
	}
	if cfg.Interval < sampler.MinimumInterval {
		return nil, errors.Wrapf(errdefs.ErrConfiguration, "interval %v is below the minimum of %v", cfg.Interval, sampler.MinimumInterval)
	}
	if err := output.Supported(cfg.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}
