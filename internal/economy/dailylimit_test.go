package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDailyLimitReserve(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("accumulates up to the cap", func(t *testing.T) {
		tr := NewDailyLimitTracker()
		assert.True(t, tr.Reserve(1, "gift", 1000, 3000, day))
		assert.True(t, tr.Reserve(1, "gift", 2000, 3000, day))
		assert.Equal(t, int64(0), tr.Remaining(1, "gift", 3000, day))
	})

	t.Run("all or nothing at the boundary", func(t *testing.T) {
		tr := NewDailyLimitTracker()
		assert.True(t, tr.Reserve(1, "gift", 2999, 3000, day))
		assert.False(t, tr.Reserve(1, "gift", 2, 3000, day))
		// The refused reservation must not have consumed anything.
		assert.Equal(t, int64(1), tr.Remaining(1, "gift", 3000, day))
		assert.True(t, tr.Reserve(1, "gift", 1, 3000, day))
	})

	t.Run("categories are independent", func(t *testing.T) {
		tr := NewDailyLimitTracker()
		assert.True(t, tr.Reserve(1, "gift", 3000, 3000, day))
		assert.True(t, tr.Reserve(1, "giveaway", 5000, 5000, day))
	})

	t.Run("date rollover resets usage", func(t *testing.T) {
		tr := NewDailyLimitTracker()
		assert.True(t, tr.Reserve(1, "gift", 3000, 3000, day))
		nextDay := day.Add(24 * time.Hour)
		assert.Equal(t, int64(3000), tr.Remaining(1, "gift", 3000, nextDay))
		assert.True(t, tr.Reserve(1, "gift", 3000, 3000, nextDay))
	})
}

func TestDailyLimitRelease(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tr := NewDailyLimitTracker()

	assert.True(t, tr.Reserve(1, "giveaway", 5000, 5000, day))
	tr.Release(1, "giveaway", 5000, day)
	assert.Equal(t, int64(5000), tr.Remaining(1, "giveaway", 5000, day))
}

func TestDailyLimitSnapshotRestore(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tr := NewDailyLimitTracker()
	assert.True(t, tr.Reserve(1, "gift", 1200, 3000, day))
	assert.True(t, tr.Reserve(2, "giveaway", 500, 5000, day))

	restored := NewDailyLimitTracker()
	restored.Restore(tr.Snapshot())

	assert.Equal(t, int64(1800), restored.Remaining(1, "gift", 3000, day))
	assert.Equal(t, int64(4500), restored.Remaining(2, "giveaway", 5000, day))
}

// The tracked total never exceeds the cap no matter how reservations are
// sequenced, and remaining + used always equals the cap.
func TestDailyLimitCapProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		tr := NewDailyLimitTracker()
		limit := rapid.Int64Range(100, 10000).Draw(t, "limit")

		var used int64
		numOps := rapid.IntRange(1, 30).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			amount := rapid.Int64Range(1, limit).Draw(t, "amount")
			if tr.Reserve(1, "gift", amount, limit, day) {
				used += amount
			}
		}

		if used > limit {
			t.Fatalf("cap exceeded: used %d > cap %d", used, limit)
		}
		if remaining := tr.Remaining(1, "gift", limit, day); remaining != limit-used {
			t.Fatalf("remaining %d, want %d", remaining, limit-used)
		}
	})
}
