package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
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

func TestCoinFlip(t *testing.T) {
	tests := []struct {
		name      string
		draw      int // Intn(100) result, roll = draw+1
		winChance int
		want      bool
	}{
		{"roll 1 wins at 45", 0, 45, true},
		{"roll 45 wins at 45", 44, 45, true},
		{"roll 46 loses at 45", 45, 45, false},
		{"roll 100 loses at 45", 99, 45, false},
		{"roll 100 loses at 99", 99, 99, false},
		{"roll 1 wins at 1", 0, 1, true},
		{"roll 2 loses at 1", 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(&stubRand{ints: []int{tt.draw}})
			assert.Equal(t, tt.want, e.CoinFlip(tt.winChance))
		})
	}
}

func TestFlipFace(t *testing.T) {
	t.Run("win always shows the chosen face", func(t *testing.T) {
		e := New(&stubRand{})
		assert.Equal(t, "heads", e.FlipFace("heads", true))
		assert.Equal(t, "tails", e.FlipFace("tails", true))
	})

	t.Run("loss shows the opposite below 0.7", func(t *testing.T) {
		e := New(&stubRand{floats: []float64{0.69}})
		assert.Equal(t, "tails", e.FlipFace("heads", false))
	})

	t.Run("loss shows the chosen face at 0.7 and above", func(t *testing.T) {
		e := New(&stubRand{floats: []float64{0.70}})
		assert.Equal(t, "heads", e.FlipFace("heads", false))
	})
}

func TestMinesMultiplier(t *testing.T) {
	assert.Equal(t, 1.00, MinesMultiplier(1))
	assert.Equal(t, 1.21, MinesMultiplier(3))
	assert.Equal(t, 9.87, MinesMultiplier(25))

	// Out of range collapses to 1.00.
	assert.Equal(t, 1.00, MinesMultiplier(0))
	assert.Equal(t, 1.00, MinesMultiplier(-1))
	assert.Equal(t, 1.00, MinesMultiplier(26))
}

// The ladder never decreases as more safe cells are revealed.
func TestMinesMultiplierMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(1, 24).Draw(t, "a")
		if MinesMultiplier(a+1) < MinesMultiplier(a) {
			t.Fatalf("multiplier decreased from %d to %d reveals", a, a+1)
		}
	})
}

func TestTierDraw(t *testing.T) {
	tiers := []Tier{
		{Cumulative: 40, ID: "empty"},
		{Cumulative: 65, ID: "scraps"},
		{Cumulative: 100, ID: "vault"},
	}

	tests := []struct {
		draw float64 // Float64 result, scaled by 100 inside
		want string
	}{
		{0.0, "empty"},
		{0.399, "empty"},
		{0.40, "empty"}, // boundary belongs to the lower tier
		{0.401, "scraps"},
		{0.65, "scraps"},
		{0.99, "vault"},
	}

	for _, tt := range tests {
		e := New(&stubRand{floats: []float64{tt.draw}})
		assert.Equal(t, tt.want, e.TierDraw(tiers), "draw %.3f", tt.draw)
	}
}

// Every draw lands on some tier even for tables summing under 100.
func TestTierDrawAlwaysResolvesProperty(t *testing.T) {
	tiers := []Tier{
		{Cumulative: 30, ID: "a"},
		{Cumulative: 99.5, ID: "b"},
	}

	rapid.Check(t, func(t *rapid.T) {
		draw := rapid.Float64Range(0, 0.9999).Draw(t, "draw")
		e := New(&stubRand{floats: []float64{draw}})
		id := e.TierDraw(tiers)
		if id != "a" && id != "b" {
			t.Fatalf("unexpected tier %q", id)
		}
	})
}
