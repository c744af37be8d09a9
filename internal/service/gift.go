package service

import (
	"errors"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/model"
)

// Gift limits.
const (
	GiftDailyCap = 3000
	GiftCooldown = 3 * time.Second
)

// Gift-related errors.
var (
	ErrSelfGift          = errors.New("cannot gift tokens to yourself")
	ErrInvalidGiftAmount = errors.New("gift amount must be positive")
	ErrGiftCapReached    = errors.New("daily gift limit reached")
)

// GiftService moves tokens between two users under a shared daily cap.
type GiftService struct {
	ledger    *economy.Ledger
	cooldowns *economy.CooldownStore
	limits    *economy.DailyLimitTracker
	now       func() time.Time
}

// NewGiftService creates a GiftService. now defaults to time.Now when nil.
func NewGiftService(ledger *economy.Ledger, cooldowns *economy.CooldownStore, limits *economy.DailyLimitTracker, now func() time.Time) *GiftService {
	if now == nil {
		now = time.Now
	}
	return &GiftService{ledger: ledger, cooldowns: cooldowns, limits: limits, now: now}
}

// Gift transfers amount from one user to another. The sender's daily gift
// cap is reserved before funds move and released again if the debit fails,
// so a refused gift never burns cap.
func (s *GiftService) Gift(fromID, toID, amount int64) error {
	if fromID == toID {
		return ErrSelfGift
	}
	if amount <= 0 {
		return ErrInvalidGiftAmount
	}

	now := s.now()
	if ok, remaining := s.cooldowns.CheckShort(fromID, model.ActionGift, GiftCooldown, now); !ok {
		return &CooldownError{Action: "gift", Remaining: remaining}
	}

	if !s.limits.Reserve(fromID, model.CategoryGift, amount, GiftDailyCap, now) {
		return ErrGiftCapReached
	}

	if _, err := s.ledger.Adjust(fromID, -amount); err != nil {
		s.limits.Release(fromID, model.CategoryGift, amount, now)
		return err
	}
	if _, err := s.ledger.Adjust(toID, amount); err != nil {
		// Credit failed, give the sender their tokens back.
		s.ledger.Adjust(fromID, amount)
		s.limits.Release(fromID, model.CategoryGift, amount, now)
		return err
	}

	s.cooldowns.RecordShort(fromID, model.ActionGift, now)
	return nil
}

// Remaining returns how much the user may still gift today.
func (s *GiftService) Remaining(userID int64) int64 {
	return s.limits.Remaining(userID, model.CategoryGift, GiftDailyCap, s.now())
}
