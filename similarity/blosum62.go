// SPDX-License-Identifier: MIT

package similarity

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/diffpass/matrix"
	"github.com/katalvlaran/diffpass/msa"
)

// blosum62Order is the NCBI residue order of blosum62Table.
const blosum62Order = "ARNDCQEGHILKMFPSTWYVBZX*"

// blosum62Table holds the BLOSUM62 scores in blosum62Order.
var blosum62Table = [24][24]float64{
	/* A */ {4, -1, -2, -2, 0, -1, -1, 0, -2, -1, -1, -1, -1, -2, -1, 1, 0, -3, -2, 0, -2, -1, 0, -4},
	/* R */ {-1, 5, 0, -2, -3, 1, 0, -2, 0, -3, -2, 2, -1, -3, -2, -1, -1, -3, -2, -3, -1, 0, -1, -4},
	/* N */ {-2, 0, 6, 1, -3, 0, 0, 0, 1, -3, -3, 0, -2, -3, -2, 1, 0, -4, -2, -3, 3, 0, -1, -4},
	/* D */ {-2, -2, 1, 6, -3, 0, 2, -1, -1, -3, -4, -1, -3, -3, -1, 0, -1, -4, -3, -3, 4, 1, -1, -4},
	/* C */ {0, -3, -3, -3, 9, -3, -4, -3, -3, -1, -1, -3, -1, -2, -3, -1, -1, -2, -2, -1, -3, -3, -2, -4},
	/* Q */ {-1, 1, 0, 0, -3, 5, 2, -2, 0, -3, -2, 1, 0, -3, -1, 0, -1, -2, -1, -2, 0, 3, -1, -4},
	/* E */ {-1, 0, 0, 2, -4, 2, 5, -2, 0, -3, -3, 1, -2, -3, -1, 0, -1, -3, -2, -2, 1, 4, -1, -4},
	/* G */ {0, -2, 0, -1, -3, -2, -2, 6, -2, -4, -4, -2, -3, -3, -2, 0, -2, -2, -3, -3, -1, -2, -1, -4},
	/* H */ {-2, 0, 1, -1, -3, 0, 0, -2, 8, -3, -3, -1, -2, -1, -2, -1, -2, -2, 2, -3, 0, 0, -1, -4},
	/* I */ {-1, -3, -3, -3, -1, -3, -3, -4, -3, 4, 2, -3, 1, 0, -3, -2, -1, -3, -1, 3, -3, -3, -1, -4},
	/* L */ {-1, -2, -3, -4, -1, -2, -3, -4, -3, 2, 4, -2, 2, 0, -3, -2, -1, -2, -1, 1, -4, -3, -1, -4},
	/* K */ {-1, 2, 0, -1, -3, 1, 1, -2, -1, -3, -2, 5, -1, -3, -1, 0, -1, -3, -2, -2, 0, 1, -1, -4},
	/* M */ {-1, -1, -2, -3, -1, 0, -2, -3, -2, 1, 2, -1, 5, 0, -2, -1, -1, -1, -1, 1, -3, -1, -1, -4},
	/* F */ {-2, -3, -3, -3, -2, -3, -3, -3, -1, 0, 0, -3, 0, 6, -4, -2, -2, 1, 3, -1, -3, -3, -1, -4},
	/* P */ {-1, -2, -2, -1, -3, -1, -1, -2, -2, -3, -3, -1, -2, -4, 7, -1, -1, -4, -3, -2, -2, -1, -2, -4},
	/* S */ {1, -1, 1, 0, -1, 0, 0, 0, -1, -2, -2, 0, -1, -2, -1, 4, 1, -3, -2, -2, 0, 0, 0, -4},
	/* T */ {0, -1, 0, -1, -1, -1, -1, -2, -2, -1, -1, -1, -1, -2, -1, 1, 5, -2, -2, 0, -1, -1, 0, -4},
	/* W */ {-3, -3, -4, -4, -2, -2, -3, -2, -2, -3, -2, -3, -1, 1, -4, -3, -2, 11, 2, -3, -4, -3, -2, -4},
	/* Y */ {-2, -2, -2, -3, -2, -1, -2, -3, 2, -1, -1, -2, -1, 3, -3, -2, -2, 2, 7, -1, -3, -2, -1, -4},
	/* V */ {0, -3, -3, -3, -1, -2, -2, -3, -3, 3, 1, -2, 1, -1, -2, -2, 0, -3, -1, 4, -3, -2, -1, -4},
	/* B */ {-2, -1, 3, 4, -3, 0, 1, -1, 0, -3, -4, 0, -3, -3, -2, 0, -1, -4, -3, -3, 4, 1, -1, -4},
	/* Z */ {-1, 0, 0, 1, -3, 3, 4, -2, 0, -3, -3, 1, -1, -3, -1, 0, -1, -3, -2, -2, 1, 4, -1, -4},
	/* X */ {0, -1, -1, -1, -2, -1, -1, -1, -1, -1, -1, -1, -1, -1, -2, 0, 0, -2, -1, -1, -1, -1, -1, -4},
	/* * */ {-4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, 1},
}

// Blosum62Data builds the BLOSUM62 substitution matrix for the alphabet
// letters (index order; empty means msa.DefaultLetters) and its expected
// value, the mean score over all pairs of non-gap letters.
//
// The gap '-' is scored as the '*' row/column when gapsAsStars is set,
// otherwise every score involving a gap is 0.
//
// Errors: ErrUnknownResidue for a letter BLOSUM62 does not score.
func Blosum62Data(letters string, gapsAsStars bool) (*matrix.Dense, float64, error) {
	if letters == "" {
		letters = msa.DefaultLetters
	}
	letters = strings.ToUpper(letters)
	rows := make([]int, 0, len(letters))
	for _, r := range letters {
		switch {
		case r == msa.GapSymbol && gapsAsStars:
			rows = append(rows, strings.IndexRune(blosum62Order, '*'))
		case r == msa.GapSymbol:
			rows = append(rows, -1)
		default:
			k := strings.IndexRune(blosum62Order, r)
			if k < 0 || r == '*' {
				return nil, 0, fmt.Errorf("Blosum62Data(%q): residue %q: %w", letters, r, ErrUnknownResidue)
			}
			rows = append(rows, k)
		}
	}

	m, err := matrix.NewZeros(len(rows), len(rows))
	if err != nil {
		return nil, 0, err
	}
	sum, cnt := 0.0, 0
	for i, a := range rows {
		for j, b := range rows {
			if a < 0 || b < 0 {
				continue
			}
			v := blosum62Table[a][b]
			_ = m.Set(i, j, v)
			if blosum62Order[a] != '*' && blosum62Order[b] != '*' {
				sum += v
				cnt++
			}
		}
	}
	ev := 0.0
	if cnt > 0 {
		ev = sum / float64(cnt)
	}

	return m, ev, nil
}
