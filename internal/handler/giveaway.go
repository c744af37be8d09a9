package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/giveaway"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
)

// GiveawayCallbackPrefix is the prefix for the join button.
const GiveawayCallbackPrefix = "ga_"

// GiveawayHandler hosts giveaways: create with /giveaway, join through the
// inline button, resolve on a timer with the background sweep as backstop.
type GiveawayHandler struct {
	giveaways *giveaway.Manager
	cooldowns *economy.CooldownStore
	userLock  *lock.UserLock
}

// NewGiveawayHandler creates a new GiveawayHandler.
func NewGiveawayHandler(giveaways *giveaway.Manager, cooldowns *economy.CooldownStore, userLock *lock.UserLock) *GiveawayHandler {
	return &GiveawayHandler{giveaways: giveaways, cooldowns: cooldowns, userLock: userLock}
}

// HandleGiveaway handles /giveaway <amount> <winners>.
func (h *GiveawayHandler) HandleGiveaway(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Reply("Usage: /giveaway <amount 50-5000> <winners 1-12>")
	}

	amount, ok := model.ParseAmount(args[0])
	if !ok {
		return c.Reply("❌ Invalid giveaway amount.")
	}
	winners, err := strconv.Atoi(args[1])
	if err != nil {
		return c.Reply("❌ Invalid winner count.")
	}

	now := time.Now()
	window := time.Duration(giveaway.DefaultCooldown) * time.Second
	if ok, remaining := h.cooldowns.CheckShort(sender.ID, model.ActionGiveaway, window, now); !ok {
		return c.Reply(fmt.Sprintf("⏳ Slow down! Try again in %s.", formatDuration(remaining)))
	}

	h.userLock.Lock(sender.ID)
	session, err := h.giveaways.Create(sender.ID, amount, winners)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		switch {
		case errors.Is(err, giveaway.ErrAmountOutOfRange):
			return c.Reply(fmt.Sprintf("❌ Amount must be %d to %d tokens.", giveaway.MinAmount, giveaway.MaxAmount))
		case errors.Is(err, giveaway.ErrWinnersOutOfRange):
			return c.Reply(fmt.Sprintf("❌ Winners must be %d to %d.", giveaway.MinWinners, giveaway.MaxWinners))
		case errors.Is(err, giveaway.ErrDailyCapReached):
			return c.Reply("❌ You reached your daily giveaway limit.")
		case errors.Is(err, economy.ErrInsufficientFunds):
			return c.Reply("❌ You cannot afford that giveaway.")
		default:
			return c.Reply("❌ " + err.Error())
		}
	}

	h.cooldowns.RecordShort(sender.ID, model.ActionGiveaway, now)

	markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		{Text: "🎉 Join", Data: GiveawayCallbackPrefix + "join_" + session.ID},
	}}}
	if err := c.Reply(fmt.Sprintf(
		"🎁 %s is giving away %d tokens to %d winner(s)!\nJoin within %d seconds.",
		displayName(sender), session.Amount, session.WinnerSlots,
		int(giveaway.EntryWindow.Seconds()),
	), markup); err != nil {
		return err
	}

	// Resolve right after the window closes; the periodic sweep catches
	// anything this timer misses across a restart.
	sessionID := session.ID
	time.AfterFunc(giveaway.EntryWindow+time.Second, func() {
		result, err := h.giveaways.Resolve(sessionID)
		if err != nil {
			return
		}
		_, _ = c.Bot().Send(c.Chat(), FormatResult(result))
	})
	return nil
}

// HandleCallback processes join button presses.
func (h *GiveawayHandler) HandleCallback(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	data := strings.TrimPrefix(callbackData(c), GiveawayCallbackPrefix)
	parts := strings.SplitN(data, "_", 2)
	if len(parts) != 2 || parts[0] != "join" {
		return c.Respond(&tele.CallbackResponse{})
	}

	weight, err := h.giveaways.Enter(parts[1], sender.ID, nil)
	if err != nil {
		switch {
		case errors.Is(err, giveaway.ErrAlreadyEntered):
			return c.Respond(&tele.CallbackResponse{Text: "You already joined"})
		case errors.Is(err, giveaway.ErrNoSession), errors.Is(err, giveaway.ErrWindowClosed):
			return c.Respond(&tele.CallbackResponse{Text: "Giveaway has ended"})
		default:
			return c.Respond(&tele.CallbackResponse{Text: "Could not join"})
		}
	}

	return c.Respond(&tele.CallbackResponse{
		Text: fmt.Sprintf("You're in with %d entr%s!", weight, plural(weight, "y", "ies")),
	})
}

// FormatResult renders a resolved giveaway for the chat.
func FormatResult(result *giveaway.Result) string {
	if result.Refunded {
		return "🎁 Giveaway ended with no entries, tokens refunded."
	}

	var sb strings.Builder
	sb.WriteString("🎁 Giveaway results!\n")
	for _, w := range result.Winners {
		sb.WriteString(fmt.Sprintf("🏅 id %d wins %d tokens\n", w.UserID, w.Prize))
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
