// Package pairing composes the permutation engine with task losses into the
// models driven by the training loop.
//
// Every model follows the same lifecycle:
//
//	Prepare(x, y)            validate inputs, cache mode-independent data
//	Evaluate(x, y)           permutations, permuted x and loss in the current mode
//	EvaluateAtIdentity(x, y) hard and soft losses with no permutation applied
//
// Information, BestHits and DistanceNetwork pair two one-hot MSAs
// (*matrix.Tensor3); GraphAlignment aligns two weighted adjacency matrices
// (*matrix.Dense). Models that cache (BestHits, DistanceNetwork) return
// ErrNotPrepared from Evaluate until Prepare succeeds.
package pairing
