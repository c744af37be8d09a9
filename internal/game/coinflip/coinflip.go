// Package coinflip implements the weighted coinflip wager.
//
// The payout is decided by a configurable win chance, independent of the
// displayed coin face: the face shown is derived afterwards so that losses
// still look like fair flips most of the time.
package coinflip

import (
	"errors"
	"fmt"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game"
	"token-economy-bot/internal/game/odds"
)

// DefaultCooldown is the anti-spam gap between flips in seconds.
const DefaultCooldown = 5

// Errors for the coinflip game.
var (
	ErrInvalidBet    = errors.New("bet amount must be positive")
	ErrBetTooHigh    = errors.New("bet exceeds maximum allowed")
	ErrInvalidChoice = errors.New("choice must be heads or tails")
)

// Coinflip implements the game.Game interface.
type Coinflip struct {
	engine   *odds.Engine
	settings *economy.Settings
	cooldown int
}

// New creates a Coinflip reading its win chance and max bet from settings on
// every play.
func New(engine *odds.Engine, settings *economy.Settings) *Coinflip {
	return &Coinflip{
		engine:   engine,
		settings: settings,
		cooldown: DefaultCooldown,
	}
}

// Name returns the game's display name.
func (g *Coinflip) Name() string { return "Coinflip" }

// Command returns the command that triggers this game.
func (g *Coinflip) Command() string { return "coinflip" }

// Description returns a one-line description.
func (g *Coinflip) Description() string {
	return "Bet tokens on heads or tails. Winner doubles the bet."
}

// CooldownSeconds returns the gap between flips.
func (g *Coinflip) CooldownSeconds() int { return g.cooldown }

// ValidateBet checks the amount against the current max bet and the choice
// parameter.
func (g *Coinflip) ValidateBet(bet int64, params map[string]any) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if maxBet := g.settings.Coinflip().MaxBet; bet > maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, maxBet)
	}
	if _, err := NormalizeChoice(choiceParam(params)); err != nil {
		return err
	}
	return nil
}

// Play resolves one flip. The returned details carry the player's choice and
// the cosmetic face for rendering.
func (g *Coinflip) Play(userID int64, bet int64, params map[string]any) (*game.Result, error) {
	if err := g.ValidateBet(bet, params); err != nil {
		return nil, err
	}

	choice, _ := NormalizeChoice(choiceParam(params))
	won := g.engine.CoinFlip(g.settings.Coinflip().WinChance)
	face := g.engine.FlipFace(choice, won)

	delta := bet
	if !won {
		delta = -bet
	}

	return &game.Result{
		Delta: delta,
		Won:   won,
		Details: map[string]any{
			"choice": choice,
			"face":   face,
		},
	}, nil
}

// NormalizeChoice canonicalizes a player's side pick, accepting the h/t
// shorthands.
func NormalizeChoice(s string) (string, error) {
	switch s {
	case "heads", "h":
		return "heads", nil
	case "tails", "t":
		return "tails", nil
	default:
		return "", ErrInvalidChoice
	}
}

func choiceParam(params map[string]any) string {
	if params == nil {
		return ""
	}
	if v, ok := params["choice"].(string); ok {
		return v
	}
	return ""
}
