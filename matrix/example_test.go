package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/diffpass/matrix"
)

// ExampleDense_Induced gathers rows and columns by a global index vector,
// which is how a hard permutation is applied to a relationship matrix.
func ExampleDense_Induced() {
	a, _ := matrix.NewDenseFromRows([][]float64{
		{0, 1, 2},
		{1, 0, 3},
		{2, 3, 0},
	})
	g := []int{2, 0, 1}
	out, _ := a.Induced(g, g)
	fmt.Print(out)
	// Output:
	// [0, 2, 3]
	// [2, 0, 1]
	// [3, 1, 0]
}
