// SPDX-License-Identifier: MIT
// Package relax - RNG utilities shared by the noisy relaxations.
//
// Goals:
//   - Determinism: same seed ⇒ identical noise for a given Go release
//     (math/rand stream stability is not promised across releases).
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across goroutines.
//   - Use DeriveSeeds on the owning goroutine, then NewRNG per worker.
package relax

import "math/rand"

// defaultRNGSeed is the fixed “zero” seed used when callers pass seed==0.
const defaultRNGSeed int64 = 1

// NewRNG returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}

	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64 finalizer.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// DeriveSeeds draws one parent value from base (or uses the default seed when
// base is nil) and mixes it with stream ids 0..n-1. Call it on the owning
// goroutine, then build one RNG per worker with NewRNG.
func DeriveSeeds(base *rand.Rand, n int) []int64 {
	parent := defaultRNGSeed
	if base != nil {
		parent = base.Int63()
	}

	return SeedsFrom(parent, n)
}

// SeedsFrom mixes a fixed parent with stream ids 0..n-1. The same parent
// always yields the same seeds, so a caller can replay one noise draw.
func SeedsFrom(parent int64, n int) []int64 {
	out := make([]int64, n)
	for k := range out {
		out[k] = deriveSeed(parent, uint64(k))
	}

	return out
}

// permRange returns a Fisher–Yates permutation of 0..n-1 drawn from rng.
func permRange(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	if rng == nil {
		rng = NewRNG(0)
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}

	return p
}
