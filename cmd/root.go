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

	"github.com/estesp/peek/errdefs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	exitFailure     = 1
	exitDisappeared = 2
)

var logLevel string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "peek",
	Short: "Sample the CPU, memory and disk usage of a single process",
	Long: `This program launches a command, or attaches to a running process by pid,
and samples its CPU, resident and virtual memory and disk I/O at a fixed
interval until the process exits or peek is interrupted. The collected samples
are written once, at the end of the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit code
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errdefs.IsProcessDisappeared(err) {
		return exitDisappeared
	}
	return exitFailure
}

func init() {
	cobra.OnInitialize(initLogLevel)
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "set the logging level (info,warn,err,debug)")
}

func initLogLevel() {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
}

func parseLogLevel(s string) (log.Level, error) {
	switch s {
	case "info":
		return log.InfoLevel, nil
	case "warn":
		return log.WarnLevel, nil
	case "err":
		return log.ErrorLevel, nil
	case "debug":
		return log.DebugLevel, nil
	}
	return log.WarnLevel, fmt.Errorf("Invalid log level specified: %q", s)
}
