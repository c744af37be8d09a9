package doors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-economy-bot/internal/game/odds"
)

// stubRand replays fixed draws.
type stubRand struct {
	floats []float64
	f      int
}

func (s *stubRand) Intn(n int) int { return 0 }

func (s *stubRand) Float64() float64 {
	v := s.floats[s.f]
	s.f++
	return v
}

func TestValidateBet(t *testing.T) {
	g := New(odds.New(&stubRand{}), nil)

	assert.NoError(t, g.ValidateBet(1, nil))
	assert.NoError(t, g.ValidateBet(1000, nil))
	assert.ErrorIs(t, g.ValidateBet(0, nil), ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(1001, nil), ErrBetTooHigh)
}

func TestPlayTiers(t *testing.T) {
	tests := []struct {
		name      string
		draw      float64 // scaled by 100 inside TierDraw
		wantTier  string
		wantPrize int64 // for a 100 bet
		wantDelta int64
	}{
		{"empty door forfeits the bet", 0.10, "empty", 0, -100},
		{"scraps returns half", 0.50, "scraps", 50, -50},
		{"mirror is a push", 0.70, "mirror", 100, 0},
		{"double pays 2x", 0.85, "double", 200, 100},
		{"triple pays 3x", 0.95, "triple", 300, 200},
		{"vault pays 5x", 0.99, "vault", 500, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(odds.New(&stubRand{floats: []float64{tt.draw}}), nil)

			result, err := g.Play(1, 100, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, result.Details["tier"])
			assert.Equal(t, tt.wantPrize, result.Details["prize"])
			assert.Equal(t, tt.wantDelta, result.Delta)
			assert.Equal(t, tt.wantDelta > 0, result.Won)
		})
	}
}

func TestConfigOverrides(t *testing.T) {
	g := New(odds.New(&stubRand{}), &Config{MaxBet: 50, Cooldown: 30})

	assert.ErrorIs(t, g.ValidateBet(51, nil), ErrBetTooHigh)
	assert.Equal(t, 30, g.CooldownSeconds())
}
