package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
)

// ShopHandler handles the token shop.
type ShopHandler struct {
	shopService *service.ShopService
	userLock    *lock.UserLock
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(shopService *service.ShopService, userLock *lock.UserLock) *ShopHandler {
	return &ShopHandler{shopService: shopService, userLock: userLock}
}

// HandleShop handles /shop, listing the catalog.
func (h *ShopHandler) HandleShop(c tele.Context) error {
	items := h.shopService.Items()
	if len(items) == 0 {
		return c.Reply("🛒 The shop is empty right now.")
	}

	var sb strings.Builder
	sb.WriteString("🛒 Token Shop\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s - %d tokens", item.Name, item.Price))
		if item.Description != "" {
			sb.WriteString(": " + item.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nBuy with /buy <item> [quantity]")
	return c.Reply(sb.String())
}

// HandleBuy handles /buy <item> [quantity]. A trailing number is the
// quantity; everything before it is the item name.
func (h *ShopHandler) HandleBuy(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: /buy <item> [quantity]")
	}

	quantity := int64(1)
	name := strings.Join(args, " ")
	if len(args) > 1 {
		if q, err := strconv.ParseInt(args[len(args)-1], 10, 64); err == nil {
			quantity = q
			name = strings.Join(args[:len(args)-1], " ")
		}
	}

	h.userLock.Lock(sender.ID)
	item, cost, err := h.shopService.Buy(sender.ID, name, quantity)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		if handled, rerr := replyCooldown(c, err); handled {
			return rerr
		}
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			return c.Reply("❌ No such item, see /shop.")
		case errors.Is(err, service.ErrInvalidQuantity):
			return c.Reply("❌ Quantity must be positive.")
		case errors.Is(err, economy.ErrInsufficientFunds):
			return c.Reply("❌ Not enough tokens for that purchase.")
		default:
			return c.Reply("❌ Something went wrong, try again later.")
		}
	}

	return c.Reply(fmt.Sprintf(
		"🛍️ %s bought %d× %s for %d tokens!",
		displayName(sender), quantity, item.Name, cost,
	))
}
