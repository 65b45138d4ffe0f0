// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/katalvlaran/diffpass/config"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/msa"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errNoConfig = errors.New("--config is required")

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootFlags struct {
	configPath  string
	verbose     bool
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "diffpass",
		Short:         "Differentiable pairing of MSAs and graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "run configuration (YAML)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging on stderr")

	fitCmd := newFitCmd(f)
	fitCmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while fitting")

	root.AddCommand(newIdentityCmd(f), fitCmd, newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "diffpass", version)
		},
	}
}

// logger writes text logs to the command's stderr.
func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (f *rootFlags) load() (config.Config, error) {
	if f.configPath == "" {
		return config.Config{}, errNoConfig
	}

	return config.Load(f.configPath)
}

// readMSA loads a FASTA file as a one-hot tensor.
func readMSA(path string, c config.Config) (*matrix.Tensor3, error) {
	alpha, err := c.Alphabet()
	if err != nil {
		return nil, err
	}
	recs, err := msa.ReadFASTAFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	x, err := msa.OneHot(recs, alpha)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return x, nil
}

// readGraph loads a YAML list of rows as a weighted adjacency matrix.
func readGraph(path string) (*matrix.Dense, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows [][]float64
	if err = yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := matrix.NewDenseFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}
