package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLedgerAdjust(t *testing.T) {
	t.Run("credits create accounts lazily", func(t *testing.T) {
		l := NewLedger()
		balance, err := l.Adjust(1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance)
		assert.Equal(t, int64(100), l.Balance(1))
	})

	t.Run("unknown user has zero balance", func(t *testing.T) {
		l := NewLedger()
		assert.Equal(t, int64(0), l.Balance(42))
		_, exists := l.Account(42)
		assert.False(t, exists)
	})

	t.Run("overdraw is refused with no mutation", func(t *testing.T) {
		l := NewLedger()
		_, err := l.Adjust(1, 100)
		require.NoError(t, err)

		_, err = l.Adjust(1, -150)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, int64(100), l.Balance(1))
	})

	t.Run("debit on unknown user is refused", func(t *testing.T) {
		l := NewLedger()
		_, err := l.Adjust(7, -1)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		_, exists := l.Account(7)
		assert.False(t, exists)
	})

	t.Run("accumulators track both directions", func(t *testing.T) {
		l := NewLedger()
		_, err := l.Adjust(1, 500)
		require.NoError(t, err)
		_, err = l.Adjust(1, -200)
		require.NoError(t, err)
		_, err = l.Adjust(1, 300)
		require.NoError(t, err)

		acc, _ := l.Account(1)
		assert.Equal(t, int64(600), acc.Balance)
		assert.Equal(t, int64(800), acc.TotalEarned)
		assert.Equal(t, int64(200), acc.TotalSpent)
	})
}

func TestLedgerShortfall(t *testing.T) {
	l := NewLedger()
	_, err := l.Adjust(1, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(0), l.Shortfall(1, 50))
	assert.Equal(t, int64(0), l.Shortfall(1, 100))
	assert.Equal(t, int64(150), l.Shortfall(1, 250))
	assert.Equal(t, int64(10), l.Shortfall(99, 10))
}

func TestRank(t *testing.T) {
	tests := []struct {
		balance int64
		want    string
	}{
		{0, "🔵 Starter"},
		{999, "🔵 Starter"},
		{1000, "🟢 Silver"},
		{4999, "🟢 Silver"},
		{5000, "🥉 Gold"},
		{10000, "🥈 Premium"},
		{20000, "🥇 VIP"},
		{50000, "💎 Elite"},
		{99999, "💎 Elite"},
		{100000, "🏆 Legendary"},
		{5000000, "🏆 Legendary"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Rank(tt.balance), "balance %d", tt.balance)
	}
}

func TestLedgerTop(t *testing.T) {
	l := NewLedger()
	for id, amount := range map[int64]int64{1: 50, 2: 300, 3: 100} {
		_, err := l.Adjust(id, amount)
		require.NoError(t, err)
	}
	// User 4 earns and spends everything; zero balances stay off the board.
	_, err := l.Adjust(4, 10)
	require.NoError(t, err)
	_, err = l.Adjust(4, -10)
	require.NoError(t, err)

	top := l.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(3), top[1].UserID)

	all := l.Top(10)
	assert.Len(t, all, 3)
}

func TestLedgerSnapshotRestore(t *testing.T) {
	l := NewLedger()
	_, err := l.Adjust(1, 100)
	require.NoError(t, err)
	_, err = l.Adjust(2, 250)
	require.NoError(t, err)

	snap := l.Snapshot()

	restored := NewLedger()
	restored.Restore(snap)
	assert.Equal(t, int64(100), restored.Balance(1))
	assert.Equal(t, int64(250), restored.Balance(2))

	// Snapshot is a copy: mutating the original must not leak through.
	_, err = l.Adjust(1, 900)
	require.NoError(t, err)
	assert.Equal(t, int64(100), restored.Balance(1))
}

// Balances never go negative and earned minus spent always equals the
// balance, regardless of the adjustment sequence.
func TestLedgerConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := NewLedger()
		userID := rapid.Int64Range(1, 1000).Draw(t, "userID")

		numOps := rapid.IntRange(1, 50).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			delta := rapid.Int64Range(-500, 500).Draw(t, "delta")
			l.Adjust(userID, delta)
		}

		acc, _ := l.Account(userID)
		if acc.Balance < 0 {
			t.Fatalf("balance went negative: %d", acc.Balance)
		}
		if acc.TotalEarned-acc.TotalSpent != acc.Balance {
			t.Fatalf("conservation broken: earned %d - spent %d != balance %d",
				acc.TotalEarned, acc.TotalSpent, acc.Balance)
		}
	})
}
