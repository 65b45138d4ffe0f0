// Package relax provides the relaxation operators behind the permutation engine.
//
// What & Why:
//
//	A permutation matrix is the argmax of a linear assignment problem and has
//	no useful gradient. relax offers two operators over a square score matrix:
//
//	  • Sinkhorn: an entropic relaxation. (scores + noise)/tau is pushed through
//	    alternating column and row log-normalizations; the result has rows
//	    summing to 1 and entries in [0,1].
//	  • Matching: the exact optimum of the assignment problem (Hungarian method
//	    with potentials) on scores + noise, returned as a 0/1 matrix. An optional
//	    unbias step shuffles rows before solving so that ties are not always
//	    broken towards low indices.
//
//	Noise is Gumbel(0,1) scaled by a factor and, optionally, by the standard
//	deviation of the score matrix.
//
// Determinism:
//
//	All randomness comes from an explicit *rand.Rand. NewRNG maps seed 0 to a
//	fixed default and DeriveSeeds splits independent per-group streams.
//
// Complexity:
//
//	Sinkhorn O(iterations·n²); Matching O(n³).
package relax
