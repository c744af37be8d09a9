// Package lock provides per-user locking so balance-mutating handler
// sections serialize per user without one global bottleneck.
package lock

import "sync"

// UserLock hands out one mutex per user ID on demand.
type UserLock struct {
	locks sync.Map // map[int64]*sync.Mutex
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{}
}

func (ul *UserLock) get(userID int64) *sync.Mutex {
	if v, ok := ul.locks.Load(userID); ok {
		return v.(*sync.Mutex)
	}
	v, _ := ul.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Lock acquires the user's lock.
func (ul *UserLock) Lock(userID int64) {
	ul.get(userID).Lock()
}

// Unlock releases the user's lock.
func (ul *UserLock) Unlock(userID int64) {
	ul.get(userID).Unlock()
}

// TryLock acquires the user's lock without blocking, reporting success.
// Used to reject a second in-flight command instead of queueing it.
func (ul *UserLock) TryLock(userID int64) bool {
	return ul.get(userID).TryLock()
}

// WithLock runs fn while holding the user's lock.
func (ul *UserLock) WithLock(userID int64, fn func() error) error {
	ul.Lock(userID)
	defer ul.Unlock(userID)
	return fn()
}

// WithPairLock runs fn while holding both users' locks, always acquiring
// in ascending ID order so two crossing transfers cannot deadlock.
func (ul *UserLock) WithPairLock(a, b int64, fn func() error) error {
	if a == b {
		return ul.WithLock(a, fn)
	}
	if a > b {
		a, b = b, a
	}
	ul.Lock(a)
	defer ul.Unlock(a)
	ul.Lock(b)
	defer ul.Unlock(b)
	return fn()
}
