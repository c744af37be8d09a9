// Package mines implements the Mines reveal game: the bet is debited up
// front, safe reveals climb a fixed multiplier ladder, hitting a mine
// forfeits everything, and cashing out pays floor(bet * multiplier).
package mines

import (
	"errors"
	"math"
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
)

const (
	// GridSize is the number of cells on the board.
	GridSize = 25

	// SessionTTL is how long an untouched session stays alive. An expired
	// session is swept with no refund; the debited bet stays forfeited.
	SessionTTL = 5 * time.Minute

	// DefaultCooldown is the anti-spam gap between game starts in seconds.
	DefaultCooldown = 10
)

// Errors for the mines game.
var (
	ErrSessionExists   = errors.New("a mines game is already in progress")
	ErrNoSession       = errors.New("mines game not found or expired")
	ErrBetOutOfRange   = errors.New("bet amount out of range")
	ErrMinesOutOfRange = errors.New("mine count out of range")
	ErrInvalidCell     = errors.New("cell index out of range")
	ErrNothingRevealed = errors.New("reveal at least one safe cell before cashing out")
)

// Session is one user's in-progress game. At most one session exists per
// user; starting a second is rejected rather than voiding the first.
type Session struct {
	UserID    int64
	Bet       int64
	MineCount int
	Mines     map[int]bool
	Revealed  []int
	CreatedAt time.Time
}

func (s *Session) isRevealed(cell int) bool {
	for _, c := range s.Revealed {
		if c == cell {
			return true
		}
	}
	return false
}

// RevealResult describes the outcome of one cell reveal.
type RevealResult struct {
	Mine         bool
	SafeCount    int
	Multiplier   float64
	PotentialWin int64
	Mines        []int // populated on a bust, for board rendering
}

// Game manages all mines sessions. The bet is debited at Start and only a
// cash-out ever credits anything back.
type Game struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	ledger   *economy.Ledger
	settings *economy.Settings
	rng      odds.Rand
	now      func() time.Time
}

// New creates a Game. now defaults to time.Now when nil.
func New(ledger *economy.Ledger, settings *economy.Settings, rng odds.Rand, now func() time.Time) *Game {
	if now == nil {
		now = time.Now
	}
	return &Game{
		sessions: make(map[int64]*Session),
		ledger:   ledger,
		settings: settings,
		rng:      rng,
		now:      now,
	}
}

// Start validates the bet and mine count against the current settings,
// debits the bet and opens a session with mineCount distinct mines placed
// uniformly. Rejects with no state change if the user already has a session
// open or cannot afford the bet.
func (g *Game) Start(userID int64, bet int64, mineCount int) (*Session, error) {
	cfg := g.settings.Mines()
	if bet < cfg.MinBet || bet > cfg.MaxBet {
		return nil, ErrBetOutOfRange
	}
	if mineCount < cfg.MinMines || mineCount > cfg.MaxMines {
		return nil, ErrMinesOutOfRange
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, open := g.sessions[userID]; open {
		return nil, ErrSessionExists
	}

	if _, err := g.ledger.Adjust(userID, -bet); err != nil {
		return nil, err
	}

	session := &Session{
		UserID:    userID,
		Bet:       bet,
		MineCount: mineCount,
		Mines:     g.sampleMines(mineCount),
		CreatedAt: g.now(),
	}
	g.sessions[userID] = session
	return session, nil
}

// sampleMines draws mineCount distinct cells via a partial Fisher-Yates
// shuffle of the board.
func (g *Game) sampleMines(mineCount int) map[int]bool {
	cells := make([]int, GridSize)
	for i := range cells {
		cells[i] = i
	}
	mines := make(map[int]bool, mineCount)
	for i := 0; i < mineCount; i++ {
		j := i + g.rng.Intn(GridSize-i)
		cells[i], cells[j] = cells[j], cells[i]
		mines[cells[i]] = true
	}
	return mines
}

// Reveal uncovers one cell. Revealing an already-uncovered cell is a no-op
// that re-reports the current state. A mine destroys the session with the
// bet forfeited; a safe cell advances the multiplier ladder.
func (g *Game) Reveal(userID int64, cell int) (*RevealResult, error) {
	if cell < 0 || cell >= GridSize {
		return nil, ErrInvalidCell
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	session, ok := g.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}

	if session.isRevealed(cell) {
		return g.resultLocked(session, false), nil
	}

	if session.Mines[cell] {
		// Bust: the session dies and the debited bet stays gone.
		delete(g.sessions, userID)
		res := g.resultLocked(session, true)
		return res, nil
	}

	session.Revealed = append(session.Revealed, cell)
	return g.resultLocked(session, false), nil
}

func (g *Game) resultLocked(session *Session, busted bool) *RevealResult {
	safe := len(session.Revealed)
	mult := odds.MinesMultiplier(safe)
	res := &RevealResult{
		Mine:         busted,
		SafeCount:    safe,
		Multiplier:   mult,
		PotentialWin: int64(math.Floor(float64(session.Bet) * mult)),
	}
	if busted {
		for cell := range session.Mines {
			res.Mines = append(res.Mines, cell)
		}
	}
	return res
}

// CashOut settles the session at the current multiplier and credits the
// payout. Rejected before the first safe reveal.
func (g *Game) CashOut(userID int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	session, ok := g.sessions[userID]
	if !ok {
		return 0, ErrNoSession
	}
	if len(session.Revealed) == 0 {
		return 0, ErrNothingRevealed
	}

	payout := int64(math.Floor(float64(session.Bet) * odds.MinesMultiplier(len(session.Revealed))))
	delete(g.sessions, userID)

	if _, err := g.ledger.Adjust(userID, payout); err != nil {
		return 0, err
	}
	return payout, nil
}

// Session returns the user's open session, if any.
func (g *Game) Session(userID int64) (*Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[userID]
	return s, ok
}

// SweepExpired discards sessions older than SessionTTL and returns how many
// were dropped. Expired bets are not refunded; the timeout forfeits the
// stake just like a bust.
func (g *Game) SweepExpired() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	swept := 0
	for userID, session := range g.sessions {
		if now.Sub(session.CreatedAt) > SessionTTL {
			delete(g.sessions, userID)
			swept++
		}
	}
	return swept
}
