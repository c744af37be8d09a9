package economy

import (
	"sync"
	"time"
)

// dailyKey identifies one accumulator: user, ISO calendar date, category.
type dailyKey struct {
	userID   int64
	date     string
	category string
}

// DailyLimitTracker accumulates per-user spend per calendar day in a
// category (gift, giveaway). Date rollover naturally starts a fresh
// accumulator; a midnight sweep clears the whole table so stale days don't
// pile up between restarts.
type DailyLimitTracker struct {
	mu     sync.Mutex
	totals map[dailyKey]int64
}

// NewDailyLimitTracker creates an empty tracker.
func NewDailyLimitTracker() *DailyLimitTracker {
	return &DailyLimitTracker{totals: make(map[dailyKey]int64)}
}

func dateOf(now time.Time) string {
	return now.Format("2006-01-02")
}

// Remaining returns how much the user may still spend today in the category.
func (t *DailyLimitTracker) Remaining(userID int64, category string, cap int64, now time.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	used := t.totals[dailyKey{userID, dateOf(now), category}]
	if used >= cap {
		return 0
	}
	return cap - used
}

// Reserve accumulates amount against the user's daily cap. Returns false,
// with no mutation, if the reservation would exceed the cap.
func (t *DailyLimitTracker) Reserve(userID int64, category string, amount, cap int64, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := dailyKey{userID, dateOf(now), category}
	if t.totals[key]+amount > cap {
		return false
	}
	t.totals[key] += amount
	return true
}

// Release refunds a reservation, e.g. when a giveaway closes with no entries.
func (t *DailyLimitTracker) Release(userID int64, category string, amount int64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := dailyKey{userID, dateOf(now), category}
	t.totals[key] -= amount
	if t.totals[key] <= 0 {
		delete(t.totals, key)
	}
}

// ResetAll clears every accumulator. Invoked by the midnight sweep and the
// admin bulk reset.
func (t *DailyLimitTracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = make(map[dailyKey]int64)
}

// SnapshotEntry is the serializable form of one accumulator.
type SnapshotEntry struct {
	UserID   int64  `json:"user_id"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Used     int64  `json:"used"`
}

// Snapshot returns all accumulators, for persistence.
func (t *DailyLimitTracker) Snapshot() []SnapshotEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]SnapshotEntry, 0, len(t.totals))
	for key, used := range t.totals {
		out = append(out, SnapshotEntry{key.userID, key.date, key.category, used})
	}
	return out
}

// Restore replaces the tracker contents with a loaded snapshot.
func (t *DailyLimitTracker) Restore(entries []SnapshotEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totals = make(map[dailyKey]int64, len(entries))
	for _, e := range entries {
		t.totals[dailyKey{e.UserID, e.Date, e.Category}] = e.Used
	}
}
