// Package doors implements the door-prize wager: the player opens one of
// several doors and the prize behind it is drawn from a fixed six-tier
// cumulative probability table.
package doors

import (
	"errors"
	"fmt"

	"token-economy-bot/internal/game"
	"token-economy-bot/internal/game/odds"
)

const (
	// DefaultMaxBet is the maximum allowed bet.
	DefaultMaxBet = 1000

	// DefaultCooldown is the anti-spam gap between spins in seconds.
	DefaultCooldown = 5
)

// Errors for the doors game.
var (
	ErrInvalidBet = errors.New("bet amount must be positive")
	ErrBetTooHigh = errors.New("bet exceeds maximum allowed")
)

// prizeTier couples a draw tier with its payout multiplier, in hundredths so
// payouts stay in integer arithmetic.
type prizeTier struct {
	id      string
	pctX100 int64 // payout as percent of bet
}

// prizeTable is the six-tier prize ladder. The cumulative thresholds are
// checked in order by odds.Engine.TierDraw.
var prizeTable = []struct {
	tier  odds.Tier
	prize prizeTier
}{
	{odds.Tier{Cumulative: 40, ID: "empty"}, prizeTier{"empty", 0}},
	{odds.Tier{Cumulative: 65, ID: "scraps"}, prizeTier{"scraps", 50}},
	{odds.Tier{Cumulative: 80, ID: "mirror"}, prizeTier{"mirror", 100}},
	{odds.Tier{Cumulative: 92, ID: "double"}, prizeTier{"double", 200}},
	{odds.Tier{Cumulative: 98, ID: "triple"}, prizeTier{"triple", 300}},
	{odds.Tier{Cumulative: 100, ID: "vault"}, prizeTier{"vault", 500}},
}

// Doors implements the game.Game interface.
type Doors struct {
	engine   *odds.Engine
	maxBet   int64
	cooldown int
}

// Config holds configuration for the doors game.
type Config struct {
	MaxBet   int64
	Cooldown int
}

// New creates a Doors game with the given configuration.
func New(engine *odds.Engine, cfg *Config) *Doors {
	maxBet := int64(DefaultMaxBet)
	cooldown := DefaultCooldown

	if cfg != nil {
		if cfg.MaxBet > 0 {
			maxBet = cfg.MaxBet
		}
		if cfg.Cooldown > 0 {
			cooldown = cfg.Cooldown
		}
	}

	return &Doors{engine: engine, maxBet: maxBet, cooldown: cooldown}
}

// Name returns the game's display name.
func (g *Doors) Name() string { return "Doors" }

// Command returns the command that triggers this game.
func (g *Doors) Command() string { return "doors" }

// Description returns a one-line description.
func (g *Doors) Description() string {
	return "Open a door and take whatever prize hides behind it, from nothing to 5x."
}

// CooldownSeconds returns the gap between spins.
func (g *Doors) CooldownSeconds() int { return g.cooldown }

// ValidateBet checks the bet amount.
func (g *Doors) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > g.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, g.maxBet)
	}
	return nil
}

// Play draws one prize tier and returns the net outcome. The bet is the
// stake; the prize is bet scaled by the tier percentage, so "mirror" is a
// push and "empty" forfeits the stake.
func (g *Doors) Play(userID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := g.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	tierID := g.engine.TierDraw(tiers())
	prize := payoutFor(tierID, bet)
	delta := prize - bet

	return &game.Result{
		Delta: delta,
		Won:   delta > 0,
		Details: map[string]any{
			"tier":  tierID,
			"prize": prize,
		},
	}, nil
}

// tiers returns the draw table in odds.Engine form.
func tiers() []odds.Tier {
	out := make([]odds.Tier, len(prizeTable))
	for i, row := range prizeTable {
		out[i] = row.tier
	}
	return out
}

// payoutFor returns the gross prize for a tier and bet.
func payoutFor(tierID string, bet int64) int64 {
	for _, row := range prizeTable {
		if row.prize.id == tierID {
			return bet * row.prize.pctX100 / 100
		}
	}
	return 0
}
