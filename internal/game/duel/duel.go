// Package duel implements two-party coinflip duels: a pending challenge
// holds no funds, and only an accepted duel moves the stake from loser to
// winner.
package duel

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
)

const (
	// ChallengeTTL is how long a pending challenge stays acceptable.
	ChallengeTTL = 60 * time.Second

	// DefaultCooldown is the anti-spam gap between challenges in seconds.
	DefaultCooldown = 10
)

// Errors for duels.
var (
	ErrSelfDuel      = errors.New("cannot duel yourself")
	ErrDuelPending   = errors.New("a duel between these users is already pending")
	ErrNoChallenge   = errors.New("duel challenge not found or expired")
	ErrNotChallenged = errors.New("only the challenged user can respond")
	ErrCannotAfford  = errors.New("insufficient balance for the stake")
)

// Challenge is one pending duel. Funds move only at resolution.
type Challenge struct {
	Challenger int64
	Challenged int64
	Amount     int64
	CreatedAt  time.Time
}

// Outcome describes a settled duel.
type Outcome struct {
	WinnerID int64
	LoserID  int64
	Amount   int64
}

// Manager tracks pending challenges keyed by unordered user pair: at most
// one duel may be pending between any two users.
type Manager struct {
	mu      sync.Mutex
	pending map[string]*Challenge

	ledger *economy.Ledger
	rng    odds.Rand
	now    func() time.Time
}

// New creates a Manager. now defaults to time.Now when nil.
func New(ledger *economy.Ledger, rng odds.Rand, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		pending: make(map[string]*Challenge),
		ledger:  ledger,
		rng:     rng,
		now:     now,
	}
}

// pairKey builds the unordered-pair key.
func pairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// Challenge opens a pending duel. Both parties must currently afford the
// stake (re-checked again at accept time), and no duel may already be
// pending between the pair. No funds move.
func (m *Manager) Challenge(challengerID, challengedID, amount int64) (*Challenge, error) {
	if challengerID == challengedID {
		return nil, ErrSelfDuel
	}
	if amount <= 0 {
		return nil, ErrCannotAfford
	}
	if m.ledger.Balance(challengerID) < amount || m.ledger.Balance(challengedID) < amount {
		return nil, ErrCannotAfford
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(challengerID, challengedID)
	if _, exists := m.pending[key]; exists {
		return nil, ErrDuelPending
	}

	ch := &Challenge{
		Challenger: challengerID,
		Challenged: challengedID,
		Amount:     amount,
		CreatedAt:  m.now(),
	}
	m.pending[key] = ch
	return ch, nil
}

// Accept settles a pending duel. Balances are re-validated because they may
// have changed since the challenge; if either party can no longer afford
// the stake the challenge stays pending and nothing moves. Otherwise the
// winner is drawn uniformly and takes the stake from the loser.
func (m *Manager) Accept(challengerID, challengedID, responderID int64) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(challengerID, challengedID)
	ch, ok := m.pending[key]
	if !ok {
		return nil, ErrNoChallenge
	}
	if responderID != ch.Challenged {
		return nil, ErrNotChallenged
	}

	if m.ledger.Balance(ch.Challenger) < ch.Amount || m.ledger.Balance(ch.Challenged) < ch.Amount {
		return nil, ErrCannotAfford
	}

	delete(m.pending, key)

	winnerID, loserID := ch.Challenger, ch.Challenged
	if m.rng.Intn(2) == 1 {
		winnerID, loserID = ch.Challenged, ch.Challenger
	}

	if _, err := m.ledger.Adjust(loserID, -ch.Amount); err != nil {
		return nil, err
	}
	if _, err := m.ledger.Adjust(winnerID, ch.Amount); err != nil {
		// Give the stake back; the duel is voided.
		m.ledger.Adjust(loserID, ch.Amount)
		return nil, err
	}

	return &Outcome{WinnerID: winnerID, LoserID: loserID, Amount: ch.Amount}, nil
}

// Decline destroys a pending duel with no fund movement.
func (m *Manager) Decline(challengerID, challengedID, responderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(challengerID, challengedID)
	ch, ok := m.pending[key]
	if !ok {
		return ErrNoChallenge
	}
	if responderID != ch.Challenged {
		return ErrNotChallenged
	}

	delete(m.pending, key)
	return nil
}

// Pending returns the pending challenge between two users, if any.
func (m *Manager) Pending(a, b int64) (*Challenge, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.pending[pairKey(a, b)]
	return ch, ok
}

// SweepExpired drops challenges older than ChallengeTTL. Expiry moves no
// funds, it simply forgets the challenge.
func (m *Manager) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	swept := 0
	for key, ch := range m.pending {
		if now.Sub(ch.CreatedAt) > ChallengeTTL {
			delete(m.pending, key)
			swept++
		}
	}
	return swept
}
