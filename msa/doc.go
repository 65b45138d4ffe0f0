// Package msa reads multiple sequence alignments and one-hot encodes them.
//
// The default alphabet is the gap symbol followed by the 20 standard amino
// acids ("-ACDEFGHIKLMNPQRSTVWY"), gap at index 0. Encoding upper-cases
// residues, treats '.' as a gap and maps any other unknown letter to the gap.
// All sequences of an alignment must share the same length.
package msa
