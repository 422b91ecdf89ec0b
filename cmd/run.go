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
	"io"

	"github.com/estesp/peek/errdefs"
	"github.com/estesp/peek/interrupt"
	"github.com/estesp/peek/output"
	"github.com/estesp/peek/sampler"
	"github.com/estesp/peek/stats"
	"github.com/estesp/peek/target"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	runFlags   flagValues
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [--] <program> [args...]",
	Short: "Sample a program until it exits or peek is interrupted",
	Long: `Launch the given program, or attach to an existing process with --pid,
and sample its resource usage every interval. Press Ctrl-C to stop early; a
program launched by peek is killed on interrupt, an attached one is left
running. Samples are written once the sampling stops.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var file fileConfig
		if configFile != "" {
			var err error
			if file, err = readYaml(configFile); err != nil {
				return errors.Wrapf(errdefs.ErrConfiguration, "%v", err)
			}
		}

		fv := runFlags
		fv.args = args
		fv.set = make(map[string]bool)
		for _, name := range []string{"pid", "output", "path", "format", "interval"} {
			fv.set[name] = cmd.Flags().Changed(name)
		}

		cfg, err := buildConfig(file, fv)
		if err != nil {
			return err
		}

		provider, err := stats.NewPSUtilProvider()
		if err != nil {
			return err
		}
		return runPeek(cfg, provider, cmd.OutOrStdout())
	},
}

// runPeek arms the interrupt handler, starts or attaches to the target,
// samples it and hands the run to the sink exactly once.
func runPeek(cfg *runConfig, provider stats.Provider, stdout io.Writer) error {
	sink, err := output.New(output.Options{
		Format:      cfg.Format,
		Destination: cfg.Destination,
		Path:        cfg.Path,
		Stdout:      stdout,
	})
	if err != nil {
		return err
	}

	handler, err := interrupt.Setup()
	if err != nil {
		return err
	}
	defer handler.Stop()

	var proc *target.Process
	if cfg.Command != nil {
		proc, err = target.Spawn(*cfg.Command)
	} else {
		proc, err = target.Attach(provider, cfg.PID)
	}
	if err != nil {
		return err
	}

	run := sampler.New(provider, sampler.WithInterval(cfg.Interval)).Run(proc, handler)

	if err := sink.Write(run); err != nil {
		if run.Err != nil {
			log.WithError(run.Err).Error("sampling ended with an error")
		}
		return err
	}

	summary := stats.Summarize(run.CPU(), run.Mem())
	log.WithFields(log.Fields{
		"run":      run.ID,
		"pid":      run.PID,
		"state":    run.State,
		"samples":  summary.Count,
		"cpu_mean": summary.MeanCPU,
		"cpu_max":  summary.MaxCPU,
		"cpu_p95":  summary.P95CPU,
		"mem_mean": summary.MeanRSS,
		"mem_max":  summary.MaxRSS,
	}).Info("run summary")

	if run.State == sampler.StoppedByError {
		return run.Err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML file with run defaults")
	runCmd.Flags().IntVarP(&runFlags.pid, "pid", "p", 0, "attach to an existing process instead of launching a program")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "stdout", "where to write samples (stdout,file)")
	runCmd.Flags().StringVar(&runFlags.path, "path", "", "output file path (default ./peek.<format>)")
	runCmd.Flags().StringVarP(&runFlags.format, "format", "f", "json", "output format (json,csv)")
	runCmd.Flags().DurationVarP(&runFlags.interval, "interval", "i", sampler.DefaultInterval, "sampling interval, at least 200ms")
}
