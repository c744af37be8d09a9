package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		ok    bool
	}{
		{"plain number", "250", 250, true},
		{"with spaces", "  42 ", 42, true},
		{"k suffix", "10k", 10_000, true},
		{"uppercase suffix", "5K", 5_000, true},
		{"m suffix", "2m", 2_000_000, true},
		{"b suffix", "1b", 1_000_000_000, true},
		{"fractional k", "1.5k", 1_500, true},
		{"fractional m", "0.5m", 500_000, true},
		{"zero", "0", 0, true},
		{"negative", "-5", -5, true},
		{"empty", "", 0, false},
		{"just suffix", "k", 0, false},
		{"garbage", "abc", 0, false},
		{"fraction without suffix", "1.5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
