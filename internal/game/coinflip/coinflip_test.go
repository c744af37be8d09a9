package coinflip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
)

// stubRand replays fixed draws.
type stubRand struct {
	ints   []int
	floats []float64
	i, f   int
}

func (s *stubRand) Intn(n int) int {
	v := s.ints[s.i]
	s.i++
	return v % n
}

func (s *stubRand) Float64() float64 {
	v := s.floats[s.f]
	s.f++
	return v
}

func TestNormalizeChoice(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"heads", "heads", true},
		{"h", "heads", true},
		{"tails", "tails", true},
		{"t", "tails", true},
		{"HEADS", "", false},
		{"coin", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := NormalizeChoice(tt.input)
		if tt.ok {
			require.NoError(t, err, "input %q", tt.input)
			assert.Equal(t, tt.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidChoice, "input %q", tt.input)
		}
	}
}

func TestValidateBet(t *testing.T) {
	g := New(odds.New(&stubRand{}), economy.DefaultSettings())

	assert.NoError(t, g.ValidateBet(100, map[string]any{"choice": "heads"}))
	assert.ErrorIs(t, g.ValidateBet(0, map[string]any{"choice": "heads"}), ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(-5, map[string]any{"choice": "heads"}), ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(1001, map[string]any{"choice": "heads"}), ErrBetTooHigh)
	assert.ErrorIs(t, g.ValidateBet(100, map[string]any{"choice": "edge"}), ErrInvalidChoice)
	assert.ErrorIs(t, g.ValidateBet(100, nil), ErrInvalidChoice)
}

func TestPlay(t *testing.T) {
	t.Run("winning flip pays the bet and shows the choice", func(t *testing.T) {
		// Roll 1 against 45% chance: win.
		g := New(odds.New(&stubRand{ints: []int{0}}), economy.DefaultSettings())

		result, err := g.Play(1, 200, map[string]any{"choice": "tails"})
		require.NoError(t, err)
		assert.True(t, result.Won)
		assert.Equal(t, int64(200), result.Delta)
		assert.Equal(t, "tails", result.Details["face"])
	})

	t.Run("losing flip costs the bet", func(t *testing.T) {
		// Roll 100 loses; face draw 0.1 shows the opposite side.
		g := New(odds.New(&stubRand{ints: []int{99}, floats: []float64{0.1}}), economy.DefaultSettings())

		result, err := g.Play(1, 200, map[string]any{"choice": "tails"})
		require.NoError(t, err)
		assert.False(t, result.Won)
		assert.Equal(t, int64(-200), result.Delta)
		assert.Equal(t, "heads", result.Details["face"])
	})

	t.Run("settings changes apply on the next play", func(t *testing.T) {
		settings := economy.DefaultSettings()
		g := New(odds.New(&stubRand{ints: []int{0, 0}}), settings)

		_, err := g.Play(1, 900, map[string]any{"choice": "h"})
		require.NoError(t, err)

		settings.SetCoinflip(economy.CoinflipSettings{WinChance: 45, MaxBet: 500})
		_, err = g.Play(1, 900, map[string]any{"choice": "h"})
		assert.ErrorIs(t, err, ErrBetTooHigh)
	})
}
