package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
)

// DefaultRoundDuration is how long a scramble round accepts answers.
const DefaultRoundDuration = 30 * time.Second

// Minigame-related errors.
var (
	ErrRoundActive = errors.New("a round is already running in this chat")
	ErrNoRound     = errors.New("no round is running in this chat")
	ErrNoQuestions = errors.New("question source is exhausted")
	ErrInvalidPot  = errors.New("pot must be positive")
)

// Question is one scramble puzzle.
type Question struct {
	Word string
	Hint string
}

// QuestionSource supplies scramble words. The bot ships no built-in bank;
// deployments inject their own.
type QuestionSource interface {
	Next() (Question, bool)
}

// Round is one running scramble in a chat.
type Round struct {
	ChatID    int64
	Word      string
	Scrambled string
	Hint      string
	Pot       int64
	StartedAt time.Time
	EndsAt    time.Time
}

// MinigameService runs the word-scramble rounds: one per chat, first correct
// answer takes the pot.
type MinigameService struct {
	mu     sync.Mutex
	rounds map[int64]*Round

	ledger *economy.Ledger
	source QuestionSource
	rng    odds.Rand
	now    func() time.Time
}

// NewMinigameService creates a MinigameService. now defaults to time.Now
// when nil.
func NewMinigameService(ledger *economy.Ledger, source QuestionSource, rng odds.Rand, now func() time.Time) *MinigameService {
	if now == nil {
		now = time.Now
	}
	return &MinigameService{
		rounds: make(map[int64]*Round),
		ledger: ledger,
		source: source,
		rng:    rng,
		now:    now,
	}
}

// Start opens a round in the chat with the next question from the source.
func (s *MinigameService) Start(chatID int64, pot int64, duration time.Duration) (*Round, error) {
	if pot <= 0 {
		return nil, ErrInvalidPot
	}
	if duration <= 0 {
		duration = DefaultRoundDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.rounds[chatID]; running {
		return nil, ErrRoundActive
	}

	q, ok := s.source.Next()
	if !ok {
		return nil, ErrNoQuestions
	}

	now := s.now()
	round := &Round{
		ChatID:    chatID,
		Word:      q.Word,
		Scrambled: s.scramble(q.Word),
		Hint:      q.Hint,
		Pot:       pot,
		StartedAt: now,
		EndsAt:    now.Add(duration),
	}
	s.rounds[chatID] = round
	return round, nil
}

// scramble shuffles the word's runes, retrying a few times if the shuffle
// lands back on the original spelling.
func (s *MinigameService) scramble(word string) string {
	runes := []rune(word)
	for attempt := 0; attempt < 5; attempt++ {
		for i := len(runes) - 1; i > 0; i-- {
			j := s.rng.Intn(i + 1)
			runes[i], runes[j] = runes[j], runes[i]
		}
		if string(runes) != word {
			break
		}
	}
	return string(runes)
}

// Answer checks a guess against the running round. A correct guess ends the
// round and pays the pot; wrong guesses and guesses after the deadline
// change nothing.
func (s *MinigameService) Answer(chatID, userID int64, guess string) (int64, error) {
	s.mu.Lock()

	round, ok := s.rounds[chatID]
	if !ok {
		s.mu.Unlock()
		return 0, ErrNoRound
	}
	if s.now().After(round.EndsAt) {
		s.mu.Unlock()
		return 0, ErrNoRound
	}
	if !strings.EqualFold(strings.TrimSpace(guess), round.Word) {
		s.mu.Unlock()
		return 0, nil
	}

	delete(s.rounds, chatID)
	s.mu.Unlock()

	if _, err := s.ledger.Adjust(userID, round.Pot); err != nil {
		return 0, err
	}
	return round.Pot, nil
}

// Expire closes the chat's round if it is still the one that timed out.
// Returns false when the round already ended, which the timer treats as a
// silent cancellation rather than an error.
func (s *MinigameService) Expire(chatID int64, startedAt time.Time) (*Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[chatID]
	if !ok || !round.StartedAt.Equal(startedAt) {
		return nil, false
	}
	delete(s.rounds, chatID)
	return round, true
}

// Round returns the chat's running round, if any.
func (s *MinigameService) Round(chatID int64) (*Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[chatID]
	return r, ok
}
