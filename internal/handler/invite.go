package handler

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/service"
)

// InviteHandler handles referral links and stats. Referrals land through
// the /start deep link payload (see AccountHandler.HandleStart).
type InviteHandler struct {
	inviteService *service.InviteService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService *service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// HandleInviteLink handles /invitelink, issuing a personal referral deep
// link once per 24h.
func (h *InviteHandler) HandleInviteLink(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if err := h.inviteService.CheckLink(sender.ID); err != nil {
		if handled, rerr := replyCooldown(c, err); handled {
			return rerr
		}
		return c.Reply("❌ Something went wrong, try again later.")
	}

	h.inviteService.RecordLink(sender.ID)
	return c.Reply(fmt.Sprintf(
		"🔗 Your referral link:\nhttps://t.me/%s?start=%d\nYou earn %d tokens per new user.",
		c.Bot().Me.Username, sender.ID, service.InvitePayout,
	))
}

// HandleInvites handles /invites, showing the sender's referral stats.
func (h *InviteHandler) HandleInvites(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	stats := h.inviteService.Stats(sender.ID)
	return c.Reply(fmt.Sprintf(
		"📨 Invites: %d users, %d tokens earned.",
		stats.TotalInvites, stats.TokensEarned,
	))
}
