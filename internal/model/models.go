// Package model defines the data models shared across the token economy bot.
package model

import (
	"strconv"
	"strings"
)

// Account holds one user's token balances. Accounts are created lazily on the
// first balance mutation and start at zero.
type Account struct {
	UserID      int64 `json:"user_id"`
	Balance     int64 `json:"balance"`
	TotalEarned int64 `json:"total_earned"`
	TotalSpent  int64 `json:"total_spent"`
}

// ShopItem is one admin-configurable entry in the token shop.
type ShopItem struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}

// InviteRecord tracks a single inviter's referral results.
type InviteRecord struct {
	InvitedUsers []int64 `json:"invited_users"`
	TotalInvites int     `json:"total_invites"`
	TokensEarned int64   `json:"tokens_earned"`
}

// Action kinds used as cooldown keys. Long actions store an RFC3339 timestamp,
// short actions store epoch seconds.
const (
	ActionDaily      = "daily"
	ActionWork       = "work"
	ActionCrime      = "crime"
	ActionInviteLink = "invitelink"

	ActionCoinflip = "coinflip"
	ActionMines    = "mines"
	ActionDoors    = "doors"
	ActionDuel     = "duel"
	ActionGift     = "gift"
	ActionBuy      = "buy"
	ActionGiveaway = "giveaway"
)

// Daily-limit categories.
const (
	CategoryGift     = "gift"
	CategoryGiveaway = "giveaway"
)

// ParseAmount parses a token amount with optional k/m/b suffixes
// (e.g. "250", "10k", "1.5m"). Returns false for anything unparseable.
func ParseAmount(s string) (int64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'k':
		mult = 1_000
		s = s[:len(s)-1]
	case 'm':
		mult = 1_000_000
		s = s[:len(s)-1]
	case 'b':
		mult = 1_000_000_000
		s = s[:len(s)-1]
	}

	if mult == 1 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f * float64(mult)), true
}
