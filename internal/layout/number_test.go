package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		nil_  bool
	}{
		{"thousands and decimal comma", "1.234,56", 1234.56, false},
		{"plain decimal comma", "345,67", 345.67, false},
		{"currency noise stripped", "R$*** 345,67", 345.67, false},
		{"negative", "-12,50", -12.50, false},
		{"six decimal unit price", "0,964401", 0.964401, false},
		{"integer", "120", 120, false},
		{"malformed", "abc", 0, true},
		{"empty", "", 0, true},
		{"lone separators", ",-", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if tt.nil_ {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, 1.35, Round2(1.345))
	assert.Equal(t, 1.34, Round2(1.344))
	assert.Equal(t, 150.0, Round2(150.004))
	assert.Equal(t, 0.0, Round2(0))
}

func TestRound6(t *testing.T) {
	assert.Equal(t, 0.964401, Round6(0.9644014))
	assert.Equal(t, 0.964402, Round6(0.9644015))
}

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "A B", NormalizeSpaces("  A \t B  "))
	// Single newlines survive, runs of whitespace collapse.
	assert.Equal(t, "A\nB", NormalizeSpaces("A\nB"))
	assert.Equal(t, "A B", NormalizeSpaces("A \n B"))
}

func TestNormalizeSpaces_ComposesAccents(t *testing.T) {
	// Decomposed C + combining cedilla must come out as the composed rune
	// so the accented label character classes match.
	decomposed := "INJEÇÃO"
	assert.Equal(t, "INJEÇÃO", NormalizeSpaces(decomposed))
}
