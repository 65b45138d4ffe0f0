// Package blocks maps group sizes onto contiguous index ranges.
//
// Every per-group operator in diffpass treats a global item axis as the
// concatenation of independent groups. Ranges turns sizes [s1..sk] into the
// half-open ranges [0,s1), [s1,s1+s2), ... and the mask helpers build the
// block-diagonal and upper-triangular selections used by comparison losses.
//
// Complexity: Ranges is O(k); masks are O(n²) for a total axis length n.
package blocks
