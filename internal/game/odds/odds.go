// Package odds provides the shared probability primitives for all wager
// games: the weighted coin flip, the mines multiplier ladder and the
// cumulative tier draw. Every function is deterministic given the injected
// random source.
package odds

import "math/rand"

// Rand is the random source the engine draws from. *rand.Rand satisfies it;
// tests substitute fixed-draw stubs.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// minesMultipliers maps the number of safe cells revealed to the cash-out
// multiplier. Index 0 is unused; the ladder is strictly increasing from
// 1.00x at one reveal to 9.87x at a full board.
var minesMultipliers = [26]float64{
	0,
	1.00, 1.10, 1.21, 1.33, 1.46,
	1.61, 1.77, 1.95, 2.14, 2.36,
	2.59, 2.85, 3.14, 3.45, 3.80,
	4.18, 4.60, 5.06, 5.57, 6.12,
	6.74, 7.41, 8.15, 8.97, 9.87,
}

// Tier is one outcome in a cumulative-threshold draw table. Tiers must be
// ordered by ascending Cumulative, with the last at 100.
type Tier struct {
	Cumulative float64 // cumulative probability threshold in percent
	ID         string
}

// Engine evaluates wager outcomes against an injected random source.
type Engine struct {
	rng Rand
}

// New creates an Engine backed by rng.
func New(rng Rand) *Engine {
	return &Engine{rng: rng}
}

// NewSeeded creates an Engine with a math/rand source, for production use.
func NewSeeded(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// CoinFlip draws a uniform integer in [1,100] and reports a win when the
// draw falls within winChancePercent.
func (e *Engine) CoinFlip(winChancePercent int) bool {
	roll := e.rng.Intn(100) + 1
	return roll <= winChancePercent
}

// FlipFace returns the coin face to display for a flip whose payout was
// already decided by CoinFlip. A winning bet always shows the player's
// choice. A losing bet shows the opposite face with probability 0.7 and the
// chosen face otherwise, so losses still look like near-misses 30% of the
// time. The constant only affects the displayed face, never the payout.
func (e *Engine) FlipFace(choice string, won bool) string {
	if won {
		return choice
	}
	if e.rng.Float64() < 0.7 {
		return opposite(choice)
	}
	return choice
}

func opposite(face string) string {
	if face == "heads" {
		return "tails"
	}
	return "heads"
}

// MinesMultiplier returns the payout multiplier for the given number of safe
// cells revealed. Out-of-range input (including 0) yields 1.00.
func MinesMultiplier(safeRevealed int) float64 {
	if safeRevealed < 1 || safeRevealed > 25 {
		return 1.00
	}
	return minesMultipliers[safeRevealed]
}

// TierDraw draws a uniform real in [0,100) and returns the ID of the first
// tier whose cumulative threshold covers the draw. The final tier is
// returned when thresholds don't reach the draw (guard against tables that
// sum slightly under 100).
func (e *Engine) TierDraw(tiers []Tier) string {
	draw := e.rng.Float64() * 100
	for _, t := range tiers {
		if draw <= t.Cumulative {
			return t.ID
		}
	}
	return tiers[len(tiers)-1].ID
}
