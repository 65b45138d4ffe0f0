// SPDX-License-Identifier: MIT

package msa

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/katalvlaran/diffpass/matrix"
)

// GapSymbol is the alignment gap.
const GapSymbol = '-'

// DefaultLetters is the default alphabet, gap first.
const DefaultLetters = "-ACDEFGHIKLMNPQRSTVWY"

var (
	// ErrBadAlphabet is returned for an alphabet without a gap or with repeated letters.
	ErrBadAlphabet = errors.New("msa: alphabet must contain '-' and no repeated letters")

	// ErrEmptyAlignment is returned when no sequence was read.
	ErrEmptyAlignment = errors.New("msa: alignment has no sequences")

	// ErrRaggedAlignment is returned when sequences differ in length.
	ErrRaggedAlignment = errors.New("msa: sequences have different lengths")

	// ErrMalformedFASTA is returned for sequence data before the first header.
	ErrMalformedFASTA = errors.New("msa: sequence data before first '>' header")
)

// Alphabet maps residue letters to one-hot indices.
type Alphabet struct {
	letters []rune
	index   map[rune]int
	gap     int
}

// NewAlphabet builds an alphabet from its letters in index order.
// Errors: ErrBadAlphabet.
func NewAlphabet(letters string) (Alphabet, error) {
	a := Alphabet{index: make(map[rune]int), gap: -1}
	for _, r := range letters {
		r = unicode.ToUpper(r)
		if _, dup := a.index[r]; dup {
			return Alphabet{}, fmt.Errorf("NewAlphabet(%q): %w", letters, ErrBadAlphabet)
		}
		a.index[r] = len(a.letters)
		if r == GapSymbol {
			a.gap = len(a.letters)
		}
		a.letters = append(a.letters, r)
	}
	if a.gap < 0 {
		return Alphabet{}, fmt.Errorf("NewAlphabet(%q): %w", letters, ErrBadAlphabet)
	}

	return a, nil
}

// DefaultAlphabet returns the alphabet built from DefaultLetters.
func DefaultAlphabet() Alphabet {
	a, _ := NewAlphabet(DefaultLetters)

	return a
}

// Size is the number of letters.
func (a Alphabet) Size() int { return len(a.letters) }

// Letters returns the letters in index order.
func (a Alphabet) Letters() string { return string(a.letters) }

// Gap returns the index of the gap letter.
func (a Alphabet) Gap() int { return a.gap }

// Index returns the index of r (case-insensitive, '.' read as a gap).
func (a Alphabet) Index(r rune) (int, bool) {
	r = unicode.ToUpper(r)
	if r == '.' {
		r = GapSymbol
	}
	i, ok := a.index[r]

	return i, ok
}

// Record is one FASTA entry.
type Record struct {
	ID  string
	Seq string
}

// ReadFASTA parses FASTA records. Header lines start with '>'; the ID is the
// header text up to the first whitespace. Sequence lines are concatenated
// with surrounding whitespace removed. Blank lines are ignored.
//
// Errors: ErrMalformedFASTA, ErrEmptyAlignment, scanner errors.
func ReadFASTA(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var (
		out []Record
		seq strings.Builder
	)
	flush := func() {
		if len(out) > 0 {
			out[len(out)-1].Seq = seq.String()
		}
		seq.Reset()
	}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ">") {
			flush()
			id := strings.TrimSpace(text[1:])
			if f := strings.Fields(id); len(f) > 0 {
				id = f[0]
			}
			out = append(out, Record{ID: id})
			continue
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("ReadFASTA: line %d: %w", line, ErrMalformedFASTA)
		}
		seq.WriteString(text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadFASTA: %w", err)
	}
	flush()
	if len(out) == 0 {
		return nil, ErrEmptyAlignment
	}

	return out, nil
}

// ReadFASTAFile opens path and calls ReadFASTA.
func ReadFASTAFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadFASTA(f)
}

// OneHot encodes aligned records into an N×L×A tensor.
// Unknown letters map to the gap.
//
// Errors: ErrEmptyAlignment, ErrRaggedAlignment.
func OneHot(records []Record, alpha Alphabet) (*matrix.Tensor3, error) {
	if len(records) == 0 {
		return nil, ErrEmptyAlignment
	}
	l := len([]rune(records[0].Seq))
	x, err := matrix.NewTensor3(len(records), l, alpha.Size())
	if err != nil {
		return nil, fmt.Errorf("OneHot: %w", err)
	}
	data := x.RawData()
	for n, rec := range records {
		runes := []rune(rec.Seq)
		if len(runes) != l {
			return nil, fmt.Errorf("OneHot: record %q has length %d, want %d: %w",
				rec.ID, len(runes), l, ErrRaggedAlignment)
		}
		for i, r := range runes {
			k, ok := alpha.Index(r)
			if !ok {
				k = alpha.Gap()
			}
			data[(n*l+i)*alpha.Size()+k] = 1
		}
	}

	return x, nil
}
