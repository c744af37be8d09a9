package giveaway

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/model"
)

func newTestManager(t *testing.T, creatorBalance int64) (*Manager, *economy.Ledger, *economy.DailyLimitTracker) {
	t.Helper()
	ledger := economy.NewLedger()
	if creatorBalance > 0 {
		_, err := ledger.Adjust(1, creatorBalance)
		require.NoError(t, err)
	}
	limits := economy.NewDailyLimitTracker()
	m := New(ledger, limits, rand.New(rand.NewSource(1)), nil)
	return m, ledger, limits
}

func TestCreate(t *testing.T) {
	t.Run("debits the pot up front", func(t *testing.T) {
		m, ledger, _ := newTestManager(t, 10000)

		session, err := m.Create(1, 500, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(9500), ledger.Balance(1))
		assert.Equal(t, int64(500), session.Amount)
		assert.Equal(t, 3, session.WinnerSlots)
	})

	t.Run("validates bounds", func(t *testing.T) {
		m, _, _ := newTestManager(t, 100000)

		_, err := m.Create(1, 49, 1)
		assert.ErrorIs(t, err, ErrAmountOutOfRange)
		_, err = m.Create(1, 5001, 1)
		assert.ErrorIs(t, err, ErrAmountOutOfRange)
		_, err = m.Create(1, 100, 0)
		assert.ErrorIs(t, err, ErrWinnersOutOfRange)
		_, err = m.Create(1, 100, 13)
		assert.ErrorIs(t, err, ErrWinnersOutOfRange)
	})

	t.Run("enforces the daily cap across giveaways", func(t *testing.T) {
		m, _, _ := newTestManager(t, 100000)

		_, err := m.Create(1, 5000, 1)
		require.NoError(t, err)
		_, err = m.Create(1, 50, 1)
		assert.ErrorIs(t, err, ErrDailyCapReached)
	})

	t.Run("unaffordable pot releases the cap reservation", func(t *testing.T) {
		m, _, limits := newTestManager(t, 100)

		_, err := m.Create(1, 500, 1)
		assert.ErrorIs(t, err, economy.ErrInsufficientFunds)
		remaining := limits.Remaining(1, model.CategoryGiveaway, DailyCap, time.Now())
		assert.Equal(t, int64(DailyCap), remaining)
	})
}

func TestEnter(t *testing.T) {
	m, _, _ := newTestManager(t, 10000)
	session, err := m.Create(1, 500, 3)
	require.NoError(t, err)

	t.Run("base weight is one", func(t *testing.T) {
		weight, err := m.Enter(session.ID, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, weight)
	})

	t.Run("role bonuses add weight", func(t *testing.T) {
		weight, err := m.Enter(session.ID, 3, []int{2, 1})
		require.NoError(t, err)
		assert.Equal(t, 4, weight)
	})

	t.Run("duplicate entries are rejected", func(t *testing.T) {
		_, err := m.Enter(session.ID, 2, nil)
		assert.ErrorIs(t, err, ErrAlreadyEntered)
	})

	t.Run("unknown giveaway", func(t *testing.T) {
		_, err := m.Enter("nope", 2, nil)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestEnterAfterWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := now

	ledger := economy.NewLedger()
	_, err := ledger.Adjust(1, 10000)
	require.NoError(t, err)
	m := New(ledger, economy.NewDailyLimitTracker(), rand.New(rand.NewSource(1)), func() time.Time { return current })

	session, err := m.Create(1, 500, 1)
	require.NoError(t, err)

	current = now.Add(EntryWindow + time.Second)
	_, err = m.Enter(session.ID, 2, nil)
	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Equal(t, []string{session.ID}, m.Expired())
}

func TestResolve(t *testing.T) {
	t.Run("no entrants refunds and releases the cap", func(t *testing.T) {
		m, ledger, limits := newTestManager(t, 10000)
		session, err := m.Create(1, 500, 2)
		require.NoError(t, err)

		result, err := m.Resolve(session.ID)
		require.NoError(t, err)
		assert.True(t, result.Refunded)
		assert.Equal(t, int64(10000), ledger.Balance(1))
		remaining := limits.Remaining(1, model.CategoryGiveaway, DailyCap, time.Now())
		assert.Equal(t, int64(DailyCap), remaining)
	})

	t.Run("single winner takes the whole pot", func(t *testing.T) {
		m, ledger, _ := newTestManager(t, 10000)
		session, err := m.Create(1, 500, 5)
		require.NoError(t, err)
		_, err = m.Enter(session.ID, 2, nil)
		require.NoError(t, err)

		result, err := m.Resolve(session.ID)
		require.NoError(t, err)
		require.Len(t, result.Winners, 1)
		assert.Equal(t, int64(2), result.Winners[0].UserID)
		assert.Equal(t, int64(500), result.Winners[0].Prize)
		assert.Equal(t, int64(500), ledger.Balance(2))
	})

	t.Run("remainder goes to the first winner", func(t *testing.T) {
		m, _, _ := newTestManager(t, 10000)
		session, err := m.Create(1, 100, 3)
		require.NoError(t, err)
		for _, id := range []int64{2, 3, 4} {
			_, err := m.Enter(session.ID, id, nil)
			require.NoError(t, err)
		}

		result, err := m.Resolve(session.ID)
		require.NoError(t, err)
		require.Len(t, result.Winners, 3)
		assert.Equal(t, int64(34), result.Winners[0].Prize) // 33 + remainder 1
		assert.Equal(t, int64(33), result.Winners[1].Prize)
		assert.Equal(t, int64(33), result.Winners[2].Prize)
	})

	t.Run("double resolve fails", func(t *testing.T) {
		m, _, _ := newTestManager(t, 10000)
		session, err := m.Create(1, 500, 1)
		require.NoError(t, err)
		_, err = m.Resolve(session.ID)
		require.NoError(t, err)
		_, err = m.Resolve(session.ID)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

// Payouts always sum to exactly the pot, winners are distinct, and never
// more numerous than slots or entrants.
func TestGiveawayConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		amount := rapid.Int64Range(MinAmount, MaxAmount).Draw(t, "amount")
		slots := rapid.IntRange(MinWinners, MaxWinners).Draw(t, "slots")
		entrants := rapid.IntRange(1, 20).Draw(t, "entrants")

		ledger := economy.NewLedger()
		ledger.Adjust(1, amount)
		m := New(ledger, economy.NewDailyLimitTracker(), rand.New(rand.NewSource(seed)), nil)

		session, err := m.Create(1, amount, slots)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		for i := 0; i < entrants; i++ {
			userID := int64(100 + i)
			bonus := rapid.IntRange(0, 3).Draw(t, "bonus")
			if _, err := m.Enter(session.ID, userID, []int{bonus}); err != nil {
				t.Fatalf("enter: %v", err)
			}
		}

		result, err := m.Resolve(session.ID)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}

		wantWinners := slots
		if entrants < slots {
			wantWinners = entrants
		}
		if len(result.Winners) != wantWinners {
			t.Fatalf("got %d winners, want %d", len(result.Winners), wantWinners)
		}

		var total int64
		seen := make(map[int64]bool)
		for _, w := range result.Winners {
			if seen[w.UserID] {
				t.Fatalf("duplicate winner %d", w.UserID)
			}
			seen[w.UserID] = true
			total += w.Prize
		}
		if total != amount {
			t.Fatalf("payouts sum to %d, want %d", total, amount)
		}
	})
}

func TestSnapshotRestore(t *testing.T) {
	m, _, _ := newTestManager(t, 10000)
	session, err := m.Create(1, 500, 2)
	require.NoError(t, err)
	_, err = m.Enter(session.ID, 2, []int{1})
	require.NoError(t, err)

	restored := New(economy.NewLedger(), economy.NewDailyLimitTracker(), rand.New(rand.NewSource(1)), nil)
	restored.Restore(m.Snapshot())

	got, ok := restored.Session(session.ID)
	require.True(t, ok)
	assert.Equal(t, session.Amount, got.Amount)
	assert.Equal(t, 2, got.Entries[2])
	assert.Equal(t, 2, got.TotalWeight)
}
