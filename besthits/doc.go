// Package besthits turns a similarity matrix into (reciprocal) best-hit
// indicators computed per pair of groups.
//
// For every block (row group a, column group b) each row picks its best hit
// among the columns of b. Hard mode uses a one-hot argmax, soft mode a
// softmax with temperature Tau. The main diagonal and NaN entries never count
// as hits. In reciprocal mode the row-wise choice is combined with the
// column-wise one, so (i, j) survives only when each is the other's best hit:
// logical AND in hard mode, product in soft mode. For a symmetric similarity
// matrix reciprocal best hits are symmetric.
package besthits
