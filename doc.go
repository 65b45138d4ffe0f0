// Package diffpass learns correspondences between the items of paired groups
// (for example, sequences of two interacting protein families sampled from the
// same species) so that a similarity or information criterion between the two
// collections is optimized.
//
// 🚀 What is inside?
//
//	A numeric core that turns learnable score matrices into per-group
//	permutations and feeds them through task losses:
//		• Permutation engine: soft (entropic relaxation) or hard (matching) permutations
//		• Fixed pairings: a-priori correspondences spliced into the relaxation
//		• Block operators: apply P to data, conjugate P·A·Pᵀ, hard index gathers
//		• Similarities: Hamming and substitution-matrix (BLOSUM62) kernels
//		• Best hits: soft/hard, reciprocal or not
//		• Losses: inter-group and intra-group comparisons, two-body entropy, MI
//		• Pairing models: information, best hits, distance network, graph alignment
//
// Under the hood, everything is organized under flat subpackages:
//
//	blocks/:      group sizes → contiguous index ranges and block masks
//	matrix/:      Dense matrices, Tensor3 data tensors, validators, gonum bridge
//	relax/:       Gumbel noise, Sinkhorn and matching relaxations, RNG streams
//	permutation/: the permutation engine and block-apply/conjugate operators
//	entropy/:     smoothed one-body and two-body entropy estimators
//	similarity/:  group-windowed similarity kernels and BLOSUM62 data
//	besthits/:    (reciprocal) best-hit indicators
//	loss/:        comparison and information losses
//	pairing/:     the four orchestrators behind one Model interface
//	fit/:         a finite-difference training loop with metrics
//	msa/:         FASTA reading and one-hot encoding
//	config/:      YAML run configuration
//
// The diffpass command (cmd/diffpass) runs a configuration over two inputs.
//
// This root package only holds the shared vocabulary: Mode and fixed pairings.
package diffpass
