package diffpass_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/diffpass"
	"github.com/stretchr/testify/assert"
)

// TestParseMode covers canonical names, case folding and rejection.
func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    diffpass.Mode
		wantErr bool
	}{
		{"soft", diffpass.Soft, false},
		{" HARD ", diffpass.Hard, false},
		{"Soft", diffpass.Soft, false},
		{"medium", diffpass.Soft, true},
		{"", diffpass.Soft, true},
	}
	for _, tt := range tests {
		got, err := diffpass.ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, diffpass.ErrInvalidMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestModeString checks the Stringer output used in logs.
func TestModeString(t *testing.T) {
	assert.Equal(t, "soft", diffpass.Soft.String())
	assert.Equal(t, "hard", diffpass.Hard.String())
	assert.False(t, diffpass.Mode(7).Valid())
}

// TestFixedPairingsEmpty distinguishes nil, all-empty and populated pairings.
func TestFixedPairingsEmpty(t *testing.T) {
	var none diffpass.FixedPairings
	assert.True(t, none.Empty())
	assert.True(t, diffpass.FixedPairings{{}, {}}.Empty())
	assert.False(t, diffpass.FixedPairings{{}, {{I: 0, J: 1}}}.Empty())
}
