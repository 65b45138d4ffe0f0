// Package permutation owns the learnable score matrices and turns them into
// per-group permutation matrices, then applies those matrices to data.
//
// What & Why:
//
//	An Engine holds one square score matrix per group, zero-initialized and
//	mutated only by an external optimizer. Compute evaluates every group with
//	the relaxation selected by the current Mode:
//
//	  • Soft: relax.Sinkhorn: rows sum to 1, entries in [0,1].
//	  • Hard: relax.Matching: an exact 0/1 permutation.
//
//	Fixed pairings are a-priori correspondences (i, j): item i of the permuted
//	collection maps to item j of the reference, i.e. P[j, i] = 1. They are
//	validated at construction. For each group the engine derives once:
//
//	  • the free rows and columns (the not-fixed mask, stored as index lists);
//	  • whether the group is fully fixed (at most one row left free), in which
//	    case the residual correspondence is completed by set difference;
//	  • the size of the free block, which is the size of its score matrix.
//
//	Compute splices the forced ones into an s×s zero matrix and scatters the
//	relaxed free block into the masked region. The relaxation never sees the
//	forced rows or columns.
//
// Operators (apply.go):
//
//	BlockApply        P·X per group on the sample axis of a Tensor3.
//	BlockConjugate    P·A·Pᵀ per group on both axes of a square matrix.
//	GlobalArgmax      per-group row argmax shifted by group offsets.
//	ApplyHard*        the index-gather equivalent of BlockConjugate for hard P.
//
// Concurrency:
//
//	Groups are independent. With Options.Parallel the engine fans groups out on
//	an errgroup; noise streams are derived per group before the fan-out, so the
//	output does not depend on scheduling.
package permutation
