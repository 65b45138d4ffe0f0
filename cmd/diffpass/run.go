// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/katalvlaran/diffpass/config"
	"github.com/katalvlaran/diffpass/fit"
	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/pairing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type identityReport struct {
	Model    string  `yaml:"model"`
	HardLoss float64 `yaml:"hard_loss"`
	SoftLoss float64 `yaml:"soft_loss"`
}

// fitReport is printed by the fit command. Pairings[g][j] is the index of
// the x item paired with item j of y, both counted inside group g.
type fitReport struct {
	RunID        string         `yaml:"run_id"`
	Identity     identityReport `yaml:"identity"`
	BestEpoch    int            `yaml:"best_epoch"`
	BestHardLoss float64        `yaml:"best_hard_loss"`
	HardLosses   []float64      `yaml:"hard_losses"`
	SoftLosses   []float64      `yaml:"soft_losses"`
	Pairings     [][]int        `yaml:"pairings"`
}

func newIdentityCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "identity X Y",
		Short: "Print the hard and soft losses with no permutation applied",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.load()
			if err != nil {
				return err
			}
			log := f.logger(cmd)
			var id pairing.IdentityLosses
			if c.IsGraph() {
				id, err = identityGraph(c, log, args[0], args[1])
			} else {
				id, err = identityMSA(c, log, args[0], args[1])
			}
			if err != nil {
				return err
			}

			return writeYAML(cmd.OutOrStdout(), identityReport{Model: c.Model, HardLoss: id.Hard, SoftLoss: id.Soft})
		},
	}
}

func identityMSA(c config.Config, log *slog.Logger, xPath, yPath string) (pairing.IdentityLosses, error) {
	m, x, y, err := loadMSA(c, log, xPath, yPath)
	if err != nil {
		return pairing.IdentityLosses{}, err
	}

	return identity(m, x, y)
}

func identityGraph(c config.Config, log *slog.Logger, xPath, yPath string) (pairing.IdentityLosses, error) {
	m, x, y, err := loadGraph(c, log, xPath, yPath)
	if err != nil {
		return pairing.IdentityLosses{}, err
	}

	return identity(m, x, y)
}

func identity[T any](m pairing.Model[T], x, y T) (pairing.IdentityLosses, error) {
	if err := m.Prepare(x, y); err != nil {
		return pairing.IdentityLosses{}, err
	}

	return m.EvaluateAtIdentity(x, y)
}

func newFitCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fit X Y",
		Short: "Optimize the pairing and print the loss history and best pairings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.load()
			if err != nil {
				return err
			}
			log := f.logger(cmd)

			var h *fit.History
			train := func(ctx context.Context) error {
				var err error
				if c.IsGraph() {
					h, err = fitGraph(ctx, c, log, args[0], args[1])
				} else {
					h, err = fitMSA(ctx, c, log, args[0], args[1])
				}

				return err
			}
			if err = withMetrics(cmd.Context(), f.metricsAddr, log, train); err != nil {
				return err
			}

			return writeYAML(cmd.OutOrStdout(), newFitReport(c.Model, h))
		},
	}
}

func fitMSA(ctx context.Context, c config.Config, log *slog.Logger, xPath, yPath string) (*fit.History, error) {
	m, x, y, err := loadMSA(c, log, xPath, yPath)
	if err != nil {
		return nil, err
	}

	return fit.Run(ctx, m, x, y, c.FitOptions(log))
}

func fitGraph(ctx context.Context, c config.Config, log *slog.Logger, xPath, yPath string) (*fit.History, error) {
	m, x, y, err := loadGraph(c, log, xPath, yPath)
	if err != nil {
		return nil, err
	}

	return fit.Run(ctx, m, x, y, c.FitOptions(log))
}

// withMetrics runs train, serving the default Prometheus registry on addr
// for its duration. An empty addr runs train alone.
func withMetrics(ctx context.Context, addr string, log *slog.Logger, train func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if addr == "" {
		return train(ctx)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		err := train(gctx)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); err == nil {
			err = serr
		}

		return err
	})

	return g.Wait()
}

func loadMSA(c config.Config, log *slog.Logger, xPath, yPath string) (pairing.Model[*matrix.Tensor3], *matrix.Tensor3, *matrix.Tensor3, error) {
	m, err := c.MSAModel(log)
	if err != nil {
		return nil, nil, nil, err
	}
	x, err := readMSA(xPath, c)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := readMSA(yPath, c)
	if err != nil {
		return nil, nil, nil, err
	}

	return m, x, y, nil
}

func loadGraph(c config.Config, log *slog.Logger, xPath, yPath string) (pairing.Model[*matrix.Dense], *matrix.Dense, *matrix.Dense, error) {
	m, err := c.GraphModel(log)
	if err != nil {
		return nil, nil, nil, err
	}
	x, err := readGraph(xPath)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := readGraph(yPath)
	if err != nil {
		return nil, nil, nil, err
	}

	return m, x, y, nil
}

func newFitReport(model string, h *fit.History) fitReport {
	r := fitReport{
		RunID:        h.RunID.String(),
		Identity:     identityReport{Model: model, HardLoss: h.Identity.Hard, SoftLoss: h.Identity.Soft},
		BestEpoch:    h.BestEpoch,
		BestHardLoss: h.BestHardLoss,
		HardLosses:   h.HardLosses,
		SoftLosses:   h.SoftLosses,
	}
	for _, p := range h.BestPerms() {
		r.Pairings = append(r.Pairings, matrix.RowArgmax(p))
	}

	return r
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}

	return enc.Close()
}
