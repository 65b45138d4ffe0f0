// SPDX-License-Identifier: MIT

// Command diffpass pairs two collections with a differentiable permutation
// model described by a YAML run configuration.
//
// Usage:
//
//	diffpass identity --config run.yaml x.fasta y.fasta
//	diffpass fit --config run.yaml [--metrics-addr :9090] x.fasta y.fasta
//	diffpass version
//
// Graph configurations take YAML adjacency matrices instead of FASTA files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "diffpass:", err)
		stop()
		os.Exit(1)
	}
}
