// SPDX-License-Identifier: MIT

package fit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// epochsTotal counts completed epochs by outcome.
	epochsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diffpass_fit_epochs_total",
		Help: "Completed training epochs by outcome",
	}, []string{"result"})

	// lastLoss holds the latest loss per mode.
	lastLoss = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "diffpass_fit_loss",
		Help: "Most recent loss by permutation mode",
	}, []string{"mode"})

	// epochDuration tracks wall time per epoch.
	epochDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "diffpass_fit_epoch_duration_seconds",
		Help:    "Training epoch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
)
