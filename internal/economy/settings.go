package economy

import "sync"

// CoinflipSettings are the runtime-adjustable coinflip parameters.
type CoinflipSettings struct {
	WinChance int   `json:"win_chance"`
	MaxBet    int64 `json:"max_bet"`
}

// MinesSettings are the runtime-adjustable mines parameters.
type MinesSettings struct {
	MinMines int   `json:"min_mines"`
	MaxMines int   `json:"max_mines"`
	MinBet   int64 `json:"min_bet"`
	MaxBet   int64 `json:"max_bet"`
}

// Settings holds the admin-mutable game parameters. Games read the current
// values on every invocation rather than caching them, so a config change
// takes effect on the next bet.
type Settings struct {
	mu       sync.RWMutex
	coinflip CoinflipSettings
	mines    MinesSettings
}

// DefaultSettings returns the stock parameters: 45% coinflip win chance with
// a 1000 max bet, mines 1..24 mines with bets 100..1000.
func DefaultSettings() *Settings {
	return &Settings{
		coinflip: CoinflipSettings{WinChance: 45, MaxBet: 1000},
		mines:    MinesSettings{MinMines: 1, MaxMines: 24, MinBet: 100, MaxBet: 1000},
	}
}

// Coinflip returns the current coinflip parameters.
func (s *Settings) Coinflip() CoinflipSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coinflip
}

// SetCoinflip replaces the coinflip parameters. Admin-gated.
func (s *Settings) SetCoinflip(cfg CoinflipSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coinflip = cfg
}

// Mines returns the current mines parameters.
func (s *Settings) Mines() MinesSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mines
}

// SetMines replaces the mines parameters. Admin-gated.
func (s *Settings) SetMines(cfg MinesSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mines = cfg
}
