// Package giveaway implements timed token giveaways: the pot is debited
// from the creator up front, entrants join during a short window with
// role-weighted entries, and the pot is split among weighted-sampled
// distinct winners when the window closes.
package giveaway

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
	"token-economy-bot/internal/model"
)

const (
	// EntryWindow is the fixed duration a giveaway accepts entries.
	EntryWindow = 25 * time.Second

	// MinAmount and MaxAmount bound the pot size.
	MinAmount = 50
	MaxAmount = 5000

	// MinWinners and MaxWinners bound the winner slot count.
	MinWinners = 1
	MaxWinners = 12

	// DailyCap is the per-creator daily giveaway spend ceiling.
	DailyCap = 5000

	// DefaultCooldown is the anti-spam gap between creations in seconds.
	DefaultCooldown = 30
)

// Errors for giveaways.
var (
	ErrAmountOutOfRange  = errors.New("giveaway amount out of range")
	ErrWinnersOutOfRange = errors.New("winner count out of range")
	ErrDailyCapReached   = errors.New("daily giveaway limit reached")
	ErrNoSession         = errors.New("giveaway not found or ended")
	ErrAlreadyEntered    = errors.New("already entered this giveaway")
	ErrWindowClosed      = errors.New("entry window has closed")
)

// Session is one open giveaway.
type Session struct {
	ID          string        `json:"id"`
	CreatorID   int64         `json:"creator"`
	Amount      int64         `json:"amount"`
	WinnerSlots int           `json:"winners"`
	Entries     map[int64]int `json:"entries"` // userID -> entry weight
	TotalWeight int           `json:"total_entries"`
	CreatedAt   time.Time     `json:"created_at"`
	EndTime     time.Time     `json:"end_time"`
}

// WinnerPayout is one winner's share of a resolved giveaway.
type WinnerPayout struct {
	UserID int64
	Prize  int64
}

// Result describes a resolved giveaway. Refunded is set when the pot went
// back to the creator because nobody entered.
type Result struct {
	Session  *Session
	Winners  []WinnerPayout
	Refunded bool
}

// Manager tracks open giveaways and resolves them at window close.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ledger *economy.Ledger
	limits *economy.DailyLimitTracker
	rng    odds.Rand
	now    func() time.Time
}

// New creates a Manager. now defaults to time.Now when nil.
func New(ledger *economy.Ledger, limits *economy.DailyLimitTracker, rng odds.Rand, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ledger:   ledger,
		limits:   limits,
		rng:      rng,
		now:      now,
	}
}

// Create validates bounds and the creator's daily cap, debits the pot and
// opens the entry window. The daily-cap reservation is released again only
// if the giveaway later resolves with no entrants.
func (m *Manager) Create(creatorID int64, amount int64, winnerSlots int) (*Session, error) {
	if amount < MinAmount || amount > MaxAmount {
		return nil, ErrAmountOutOfRange
	}
	if winnerSlots < MinWinners || winnerSlots > MaxWinners {
		return nil, ErrWinnersOutOfRange
	}

	now := m.now()
	if !m.limits.Reserve(creatorID, model.CategoryGiveaway, amount, DailyCap, now) {
		return nil, ErrDailyCapReached
	}

	if _, err := m.ledger.Adjust(creatorID, -amount); err != nil {
		m.limits.Release(creatorID, model.CategoryGiveaway, amount, now)
		return nil, err
	}

	session := &Session{
		ID:          fmt.Sprintf("%d_%d", creatorID, now.Unix()),
		CreatorID:   creatorID,
		Amount:      amount,
		WinnerSlots: winnerSlots,
		Entries:     make(map[int64]int),
		CreatedAt:   now,
		EndTime:     now.Add(EntryWindow),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session, nil
}

// Enter adds a user to the giveaway with weight 1 plus any role bonuses.
// Duplicate entries are rejected.
func (m *Manager) Enter(sessionID string, userID int64, roleBonuses []int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return 0, ErrNoSession
	}
	if m.now().After(session.EndTime) {
		return 0, ErrWindowClosed
	}
	if _, entered := session.Entries[userID]; entered {
		return 0, ErrAlreadyEntered
	}

	weight := 1
	for _, bonus := range roleBonuses {
		weight += bonus
	}
	session.Entries[userID] = weight
	session.TotalWeight += weight
	return weight, nil
}

// Session returns an open giveaway by id.
func (m *Manager) Session(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Resolve closes a giveaway. With no entrants the pot is refunded and the
// daily-cap reservation released. Otherwise up to min(winnerSlots, distinct
// entrants) distinct winners are drawn, each draw weighted by entry count,
// and the pot is split by integer division with the remainder going to the
// first winner drawn, so the payouts always sum to exactly the pot.
func (m *Manager) Resolve(sessionID string) (*Result, error) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNoSession
	}

	if session.TotalWeight == 0 || len(session.Entries) == 0 {
		m.ledger.Adjust(session.CreatorID, session.Amount)
		m.limits.Release(session.CreatorID, model.CategoryGiveaway, session.Amount, m.now())
		return &Result{Session: session, Refunded: true}, nil
	}

	winners := m.drawWinners(session)
	share := session.Amount / int64(len(winners))
	remainder := session.Amount - share*int64(len(winners))

	result := &Result{Session: session}
	for i, winnerID := range winners {
		prize := share
		if i == 0 {
			prize += remainder
		}
		m.ledger.Adjust(winnerID, prize)
		result.Winners = append(result.Winners, WinnerPayout{UserID: winnerID, Prize: prize})
	}
	return result, nil
}

// drawWinners samples distinct entrants without replacement, each draw
// proportional to remaining entry weights. Weight shifts who gets drawn,
// not how many distinct winners are possible.
func (m *Manager) drawWinners(session *Session) []int64 {
	type entrant struct {
		id     int64
		weight int
	}

	pool := make([]entrant, 0, len(session.Entries))
	for id, w := range session.Entries {
		pool = append(pool, entrant{id, w})
	}
	// Map iteration order is random; sort for a reproducible draw sequence
	// under a deterministic rng.
	sort.Slice(pool, func(i, j int) bool { return pool[i].id < pool[j].id })

	count := session.WinnerSlots
	if count > len(pool) {
		count = len(pool)
	}

	winners := make([]int64, 0, count)
	total := session.TotalWeight
	for len(winners) < count {
		draw := m.rng.Intn(total)
		for i, e := range pool {
			draw -= e.weight
			if draw < 0 {
				winners = append(winners, e.id)
				total -= e.weight
				pool = append(pool[:i], pool[i+1:]...)
				break
			}
		}
	}
	return winners
}

// Expired returns the ids of giveaways whose window has closed, oldest
// first, for the sweep to resolve.
func (m *Manager) Expired() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var ids []string
	for id, session := range m.sessions {
		if !now.Before(session.EndTime) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns all open sessions, for persistence.
func (m *Manager) Snapshot() map[string]Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Session, len(m.sessions))
	for id, s := range m.sessions {
		copied := *s
		copied.Entries = make(map[int64]int, len(s.Entries))
		for uid, w := range s.Entries {
			copied.Entries[uid] = w
		}
		out[id] = copied
	}
	return out
}

// Restore replaces the open sessions with a loaded snapshot. Sessions whose
// window already closed will be picked up by the next sweep.
func (m *Manager) Restore(sessions map[string]Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*Session, len(sessions))
	for id, s := range sessions {
		copied := s
		if copied.Entries == nil {
			copied.Entries = make(map[int64]int)
		}
		m.sessions[id] = &copied
	}
}
