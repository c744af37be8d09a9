package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-economy-bot/internal/economy"
)

// listSource hands out questions in order.
type listSource struct {
	questions []Question
	i         int
}

func (s *listSource) Next() (Question, bool) {
	if s.i >= len(s.questions) {
		return Question{}, false
	}
	q := s.questions[s.i]
	s.i++
	return q, true
}

func newMinigameFixture(t *testing.T, questions ...Question) (*MinigameService, *economy.Ledger, *time.Time) {
	t.Helper()
	ledger := economy.NewLedger()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewMinigameService(ledger, &listSource{questions: questions}, rand.New(rand.NewSource(1)), func() time.Time { return current })
	return svc, ledger, &current
}

func TestMinigameStart(t *testing.T) {
	t.Run("opens one round per chat", func(t *testing.T) {
		svc, _, _ := newMinigameFixture(t,
			Question{Word: "jackpot"}, Question{Word: "token"})

		round, err := svc.Start(10, 100, 0)
		require.NoError(t, err)
		assert.Equal(t, "jackpot", round.Word)
		assert.NotEqual(t, round.Word, round.Scrambled)
		assert.Len(t, round.Scrambled, len(round.Word))

		_, err = svc.Start(10, 100, 0)
		assert.ErrorIs(t, err, ErrRoundActive)

		// A different chat is free to run its own round.
		_, err = svc.Start(11, 100, 0)
		require.NoError(t, err)
	})

	t.Run("rejects a drained source", func(t *testing.T) {
		svc, _, _ := newMinigameFixture(t)
		_, err := svc.Start(10, 100, 0)
		assert.ErrorIs(t, err, ErrNoQuestions)
	})

	t.Run("rejects a non-positive pot", func(t *testing.T) {
		svc, _, _ := newMinigameFixture(t, Question{Word: "jackpot"})
		_, err := svc.Start(10, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidPot)
	})
}

func TestMinigameAnswer(t *testing.T) {
	t.Run("first correct answer wins the pot", func(t *testing.T) {
		svc, ledger, _ := newMinigameFixture(t, Question{Word: "jackpot"})
		_, err := svc.Start(10, 250, 0)
		require.NoError(t, err)

		prize, err := svc.Answer(10, 5, "  JACKPOT ")
		require.NoError(t, err)
		assert.Equal(t, int64(250), prize)
		assert.Equal(t, int64(250), ledger.Balance(5))

		// The round is gone; a second answer finds nothing.
		_, err = svc.Answer(10, 6, "jackpot")
		assert.ErrorIs(t, err, ErrNoRound)
	})

	t.Run("wrong guesses change nothing", func(t *testing.T) {
		svc, ledger, _ := newMinigameFixture(t, Question{Word: "jackpot"})
		_, err := svc.Start(10, 250, 0)
		require.NoError(t, err)

		prize, err := svc.Answer(10, 5, "jackpost")
		require.NoError(t, err)
		assert.Zero(t, prize)
		assert.Zero(t, ledger.Balance(5))
		_, running := svc.Round(10)
		assert.True(t, running)
	})

	t.Run("late answers miss the window", func(t *testing.T) {
		svc, _, current := newMinigameFixture(t, Question{Word: "jackpot"})
		_, err := svc.Start(10, 250, 30*time.Second)
		require.NoError(t, err)

		*current = current.Add(31 * time.Second)
		_, err = svc.Answer(10, 5, "jackpot")
		assert.ErrorIs(t, err, ErrNoRound)
	})
}

func TestMinigameExpire(t *testing.T) {
	svc, _, _ := newMinigameFixture(t, Question{Word: "jackpot"}, Question{Word: "token"})
	round, err := svc.Start(10, 250, 0)
	require.NoError(t, err)

	t.Run("expires the matching round", func(t *testing.T) {
		expired, ok := svc.Expire(10, round.StartedAt)
		require.True(t, ok)
		assert.Equal(t, "jackpot", expired.Word)
	})

	t.Run("a vanished round is a silent no-op", func(t *testing.T) {
		_, ok := svc.Expire(10, round.StartedAt)
		assert.False(t, ok)
	})

	t.Run("a newer round survives an old timer", func(t *testing.T) {
		_, err := svc.Start(10, 100, 0)
		require.NoError(t, err)

		_, ok := svc.Expire(10, round.StartedAt.Add(-time.Minute))
		assert.False(t, ok)
		_, running := svc.Round(10)
		assert.True(t, running)
	})
}
