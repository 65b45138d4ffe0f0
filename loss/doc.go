// Package loss holds the comparison losses minimized by the pairing models.
//
// Relationship losses (InterGroup, IntraGroup) compare two square N×N
// matrices on a fixed region, flattened in row-major order, through a score
// function (dot product by default) and return the negated score.
// Information losses (TwoBodyEntropy, MutualInformation) compare two
// one-hot tensors column pair by column pair.
package loss
