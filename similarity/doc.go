// Package similarity computes pairwise sequence similarities restricted to
// groups of a one-hot encoded alignment.
//
// Two operators are provided:
//   - Hamming: fraction of identical positions, as a dot product or through
//     an L^p distance.
//   - Substitution: substitution-matrix scores (BLOSUM62 via NewBlosum62), as
//     a dot product with optional scoredist normalization or as a negated L^p
//     distance between substitution embeddings.
//
// Both return an N×N matrix whose entries outside the group diagonal blocks
// are NaN. Setting an exponent P selects the distance form even when UseDot is
// set; the override is recorded as a Diagnostic and logged at Warn level when a
// logger is configured.
package similarity
