package service

import (
	"errors"
	"sync"
	"time"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/model"
)

// Invite rewards.
const (
	InvitePayout       = 10
	InviteLinkCooldown = 24 * time.Hour
)

// Invite-related errors.
var (
	ErrSelfInvite     = errors.New("cannot invite yourself")
	ErrAlreadyInvited = errors.New("user was already counted for this inviter")
)

// InviteService tracks referral records and pays the per-invite reward.
type InviteService struct {
	mu      sync.Mutex
	records map[int64]*model.InviteRecord

	ledger    *economy.Ledger
	cooldowns *economy.CooldownStore
	now       func() time.Time
}

// NewInviteService creates an empty InviteService. now defaults to time.Now
// when nil.
func NewInviteService(ledger *economy.Ledger, cooldowns *economy.CooldownStore, now func() time.Time) *InviteService {
	if now == nil {
		now = time.Now
	}
	return &InviteService{
		records:   make(map[int64]*model.InviteRecord),
		ledger:    ledger,
		cooldowns: cooldowns,
		now:       now,
	}
}

// CheckLink reports whether the user may create a fresh invite link.
func (s *InviteService) CheckLink(userID int64) error {
	now := s.now()
	if ok, availableAt := s.cooldowns.CheckLong(userID, model.ActionInviteLink, InviteLinkCooldown, now); !ok {
		return &CooldownError{Action: "invite link", Remaining: availableAt.Sub(now)}
	}
	return nil
}

// RecordLink marks a created invite link, starting the 24h cooldown.
func (s *InviteService) RecordLink(userID int64) {
	s.cooldowns.RecordLong(userID, model.ActionInviteLink, s.now())
}

// RecordInvite credits a landed invite: each invited user counts once per
// inviter, and the payout is applied to the inviter's balance.
func (s *InviteService) RecordInvite(inviterID, invitedID int64) (int64, error) {
	if inviterID == invitedID {
		return 0, ErrSelfInvite
	}

	s.mu.Lock()
	rec, ok := s.records[inviterID]
	if !ok {
		rec = &model.InviteRecord{}
		s.records[inviterID] = rec
	}
	for _, id := range rec.InvitedUsers {
		if id == invitedID {
			s.mu.Unlock()
			return 0, ErrAlreadyInvited
		}
	}
	rec.InvitedUsers = append(rec.InvitedUsers, invitedID)
	rec.TotalInvites++
	rec.TokensEarned += InvitePayout
	s.mu.Unlock()

	if _, err := s.ledger.Adjust(inviterID, InvitePayout); err != nil {
		return 0, err
	}
	return InvitePayout, nil
}

// Stats returns the inviter's record, zero-valued if none exists.
func (s *InviteService) Stats(inviterID int64) model.InviteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[inviterID]; ok {
		copied := *rec
		copied.InvitedUsers = append([]int64(nil), rec.InvitedUsers...)
		return copied
	}
	return model.InviteRecord{}
}

// ResetAll clears every record. Used by the admin bulk reset.
func (s *InviteService) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[int64]*model.InviteRecord)
}

// Snapshot returns all records keyed by inviter, for persistence.
func (s *InviteService) Snapshot() map[int64]model.InviteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]model.InviteRecord, len(s.records))
	for id, rec := range s.records {
		copied := *rec
		copied.InvitedUsers = append([]int64(nil), rec.InvitedUsers...)
		out[id] = copied
	}
	return out
}

// Restore replaces the records with a loaded snapshot.
func (s *InviteService) Restore(records map[int64]model.InviteRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[int64]*model.InviteRecord, len(records))
	for id, rec := range records {
		copied := rec
		s.records[id] = &copied
	}
}
