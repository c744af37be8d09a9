// Package economy implements the wager/reward core: balance accounting,
// cooldown bookkeeping, daily spend caps and runtime-adjustable settings.
package economy

import (
	"errors"
	"sort"
	"sync"

	"token-economy-bot/internal/model"
)

// Common errors for ledger operations.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Rank thresholds, highest first.
var rankLadder = []struct {
	min   int64
	label string
}{
	{100000, "🏆 Legendary"},
	{50000, "💎 Elite"},
	{20000, "🥇 VIP"},
	{10000, "🥈 Premium"},
	{5000, "🥉 Gold"},
	{1000, "🟢 Silver"},
	{0, "🔵 Starter"},
}

// Ledger owns all balance arithmetic. Accounts are created lazily on the
// first mutation; a delta that would take a balance below zero is refused
// before any state changes.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[int64]*model.Account
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[int64]*model.Account)}
}

// Balance returns the user's current balance, 0 for unknown users.
func (l *Ledger) Balance(userID int64) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if acc, ok := l.accounts[userID]; ok {
		return acc.Balance
	}
	return 0
}

// Account returns a copy of the user's account, creating nothing.
// The second return reports whether the account exists.
func (l *Ledger) Account(userID int64) (model.Account, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if acc, ok := l.accounts[userID]; ok {
		return *acc, true
	}
	return model.Account{UserID: userID}, false
}

// Adjust applies delta to the user's balance and returns the new balance.
// Positive deltas accumulate into TotalEarned, negative ones into TotalSpent.
// Returns ErrInsufficientFunds, with no mutation, if the delta would overdraw.
func (l *Ledger) Adjust(userID int64, delta int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[userID]
	if !ok {
		acc = &model.Account{UserID: userID}
		if delta < 0 {
			return 0, ErrInsufficientFunds
		}
		l.accounts[userID] = acc
	}

	if acc.Balance+delta < 0 {
		return acc.Balance, ErrInsufficientFunds
	}

	acc.Balance += delta
	if delta > 0 {
		acc.TotalEarned += delta
	} else {
		acc.TotalSpent += -delta
	}
	return acc.Balance, nil
}

// Shortfall returns how many tokens the user is missing to afford amount,
// 0 if the balance already covers it.
func (l *Ledger) Shortfall(userID int64, amount int64) int64 {
	if missing := amount - l.Balance(userID); missing > 0 {
		return missing
	}
	return 0
}

// Rank returns the display tier for a balance. Pure step function, no side
// effects.
func Rank(balance int64) string {
	for _, r := range rankLadder {
		if balance >= r.min {
			return r.label
		}
	}
	return rankLadder[len(rankLadder)-1].label
}

// Top returns up to n accounts with positive balance, richest first.
func (l *Ledger) Top(n int) []model.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		if acc.Balance > 0 {
			out = append(out, *acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ResetAll clears every account. Used by the admin bulk reset.
func (l *Ledger) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = make(map[int64]*model.Account)
}

// Snapshot returns a copy of all accounts keyed by user ID, for persistence.
func (l *Ledger) Snapshot() map[int64]model.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[int64]model.Account, len(l.accounts))
	for id, acc := range l.accounts {
		out[id] = *acc
	}
	return out
}

// Restore replaces the ledger contents with a loaded snapshot.
func (l *Ledger) Restore(accounts map[int64]model.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts = make(map[int64]*model.Account, len(accounts))
	for id, acc := range accounts {
		a := acc
		a.UserID = id
		l.accounts[id] = &a
	}
}
