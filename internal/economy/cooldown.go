package economy

import (
	"strconv"
	"sync"
	"time"
)

// CooldownStore tracks per-user, per-action last-use timestamps. Long
// cooldowns (daily, work, crime, invite links) store an RFC3339 timestamp and
// gate hour-scale windows; short cooldowns store epoch seconds and rate-limit
// bet-placing actions.
//
// A stored value that fails to parse is treated as expired rather than as an
// error: the store fails open by policy, favoring availability over strict
// enforcement. Check methods never consume; callers record a use only after
// the guarded action actually succeeds.
type CooldownStore struct {
	mu      sync.RWMutex
	records map[string]map[int64]string // action -> userID -> raw timestamp
}

// NewCooldownStore creates an empty CooldownStore.
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{records: make(map[string]map[int64]string)}
}

// CheckLong reports whether the user may run a long-cooldown action.
// When blocked, availableAt is the time the action next becomes usable.
func (s *CooldownStore) CheckLong(userID int64, action string, window time.Duration, now time.Time) (bool, time.Time) {
	s.mu.RLock()
	raw, ok := s.records[action][userID]
	s.mu.RUnlock()

	if !ok {
		return true, time.Time{}
	}

	lastUse, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Corrupt record: fail open.
		return true, time.Time{}
	}

	availableAt := lastUse.Add(window)
	if !now.Before(availableAt) {
		return true, time.Time{}
	}
	return false, availableAt
}

// RecordLong stores the use timestamp for a long-cooldown action.
func (s *CooldownStore) RecordLong(userID int64, action string, now time.Time) {
	s.set(userID, action, now.Format(time.RFC3339))
}

// CheckShort reports whether the user may run a short-cooldown action.
// When blocked, remaining is the wait until it becomes usable.
func (s *CooldownStore) CheckShort(userID int64, action string, window time.Duration, now time.Time) (bool, time.Duration) {
	s.mu.RLock()
	raw, ok := s.records[action][userID]
	s.mu.RUnlock()

	if !ok {
		return true, 0
	}

	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Corrupt record: fail open.
		return true, 0
	}

	elapsed := now.Sub(time.Unix(int64(secs), 0))
	if elapsed >= window {
		return true, 0
	}
	return false, window - elapsed
}

// RecordShort stores the use timestamp for a short-cooldown action.
func (s *CooldownStore) RecordShort(userID int64, action string, now time.Time) {
	s.set(userID, action, strconv.FormatInt(now.Unix(), 10))
}

func (s *CooldownStore) set(userID int64, action, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records[action] == nil {
		s.records[action] = make(map[int64]string)
	}
	s.records[action][userID] = raw
}

// ResetAll clears every stored cooldown. Used by the admin bulk reset.
func (s *CooldownStore) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]map[int64]string)
}

// Snapshot returns a copy of all records, for persistence.
func (s *CooldownStore) Snapshot() map[string]map[int64]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[int64]string, len(s.records))
	for action, users := range s.records {
		m := make(map[int64]string, len(users))
		for id, raw := range users {
			m[id] = raw
		}
		out[action] = m
	}
	return out
}

// Restore replaces the store contents with a loaded snapshot.
func (s *CooldownStore) Restore(records map[string]map[int64]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]map[int64]string, len(records))
	for action, users := range records {
		m := make(map[int64]string, len(users))
		for id, raw := range users {
			m[id] = raw
		}
		s.records[action] = m
	}
}
