package handler

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
)

// GiftHandler handles user-to-user token gifts.
type GiftHandler struct {
	giftService *service.GiftService
	userLock    *lock.UserLock
}

// NewGiftHandler creates a new GiftHandler.
func NewGiftHandler(giftService *service.GiftService, userLock *lock.UserLock) *GiftHandler {
	return &GiftHandler{giftService: giftService, userLock: userLock}
}

// HandleGift handles /gift <amount>, sent as a reply to the recipient.
func (h *GiftHandler) HandleGift(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	reply := c.Message().ReplyTo
	if reply == nil || reply.Sender == nil {
		return c.Reply("Usage: reply to the recipient with /gift <amount>")
	}
	recipient := reply.Sender

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: reply to the recipient with /gift <amount>")
	}
	amount, ok := model.ParseAmount(args[0])
	if !ok {
		return c.Reply("❌ Invalid gift amount.")
	}

	err := h.userLock.WithPairLock(sender.ID, recipient.ID, func() error {
		return h.giftService.Gift(sender.ID, recipient.ID, amount)
	})
	if err != nil {
		if handled, rerr := replyCooldown(c, err); handled {
			return rerr
		}
		switch {
		case errors.Is(err, service.ErrSelfGift):
			return c.Reply("❌ You cannot gift tokens to yourself.")
		case errors.Is(err, service.ErrInvalidGiftAmount):
			return c.Reply("❌ Gift amount must be positive.")
		case errors.Is(err, service.ErrGiftCapReached):
			remaining := h.giftService.Remaining(sender.ID)
			return c.Reply(fmt.Sprintf("❌ Daily gift limit reached, %d tokens left today.", remaining))
		case errors.Is(err, economy.ErrInsufficientFunds):
			return c.Reply("❌ Not enough tokens for that gift.")
		default:
			return c.Reply("❌ Something went wrong, try again later.")
		}
	}

	return c.Reply(fmt.Sprintf(
		"🎁 %s gifted %d tokens to %s!",
		displayName(sender), amount, displayName(recipient),
	))
}
