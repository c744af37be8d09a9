// Package game defines the common interface and registry for single-bet
// wager games. Session games (mines, duels, giveaways) manage their own
// lifecycles and live outside the registry.
package game

// Result is the structured outcome of one wager, handed to the presentation
// layer for rendering. Delta is the net balance change (positive win,
// negative loss).
type Result struct {
	Delta   int64
	Won     bool
	Details map[string]any
}

// Game is implemented by every single-bet wager game. Adding a game means
// implementing this interface and registering it.
type Game interface {
	// Name returns the game's display name.
	Name() string

	// Command returns the command that triggers this game (e.g. "coinflip").
	Command() string

	// Description returns a one-line description for the help listing.
	Description() string

	// ValidateBet checks the bet amount and game parameters without touching
	// any state. Returns nil when the bet is playable.
	ValidateBet(bet int64, params map[string]any) error

	// Play resolves the wager and returns the outcome. Play performs no
	// balance mutation itself; the caller settles Result.Delta through the
	// ledger.
	Play(userID int64, bet int64, params map[string]any) (*Result, error)

	// CooldownSeconds returns the anti-spam gap between plays, 0 for none.
	CooldownSeconds() int
}
