package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/duel"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
)

// DuelCallbackPrefix is the prefix for duel accept/decline buttons.
const DuelCallbackPrefix = "duel_"

// DuelHandler runs the two-party duel flow: challenge by replying to the
// opponent, resolve through inline buttons only the challenged user may
// press.
type DuelHandler struct {
	duels     *duel.Manager
	cooldowns *economy.CooldownStore
	userLock  *lock.UserLock
}

// NewDuelHandler creates a new DuelHandler.
func NewDuelHandler(duels *duel.Manager, cooldowns *economy.CooldownStore, userLock *lock.UserLock) *DuelHandler {
	return &DuelHandler{duels: duels, cooldowns: cooldowns, userLock: userLock}
}

// HandleDuel handles /duel <amount>, sent as a reply to the opponent.
func (h *DuelHandler) HandleDuel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	reply := c.Message().ReplyTo
	if reply == nil || reply.Sender == nil {
		return c.Reply("Usage: reply to your opponent with /duel <amount>")
	}
	opponent := reply.Sender

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: reply to your opponent with /duel <amount>")
	}
	amount, ok := model.ParseAmount(args[0])
	if !ok || amount <= 0 {
		return c.Reply("❌ Invalid duel amount.")
	}

	now := time.Now()
	window := time.Duration(duel.DefaultCooldown) * time.Second
	if ok, remaining := h.cooldowns.CheckShort(sender.ID, model.ActionDuel, window, now); !ok {
		return c.Reply(fmt.Sprintf("⏳ Slow down! Try again in %s.", formatDuration(remaining)))
	}

	ch, err := h.duels.Challenge(sender.ID, opponent.ID, amount)
	if err != nil {
		switch {
		case errors.Is(err, duel.ErrSelfDuel):
			return c.Reply("❌ You cannot duel yourself.")
		case errors.Is(err, duel.ErrDuelPending):
			return c.Reply("❌ There is already a pending duel between you two.")
		case errors.Is(err, duel.ErrCannotAfford):
			return c.Reply("❌ One of you cannot afford that stake.")
		default:
			return c.Reply("❌ " + err.Error())
		}
	}

	h.cooldowns.RecordShort(sender.ID, model.ActionDuel, now)

	param := fmt.Sprintf("%d_%d", ch.Challenger, ch.Challenged)
	markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{
		{Text: "⚔️ Accept", Data: DuelCallbackPrefix + "accept_" + param},
		{Text: "🏳️ Decline", Data: DuelCallbackPrefix + "decline_" + param},
	}}}

	return c.Reply(fmt.Sprintf(
		"⚔️ %s challenges %s to a duel for %d tokens!\nExpires in %d seconds.",
		displayName(sender), displayName(opponent), amount, int(duel.ChallengeTTL.Seconds()),
	), markup)
}

// HandleCallback resolves accept/decline button presses.
func (h *DuelHandler) HandleCallback(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	data := strings.TrimPrefix(callbackData(c), DuelCallbackPrefix)
	parts := strings.Split(data, "_")
	if len(parts) != 3 {
		return c.Respond(&tele.CallbackResponse{Text: "Bad duel data"})
	}
	action := parts[0]
	challengerID, err1 := strconv.ParseInt(parts[1], 10, 64)
	challengedID, err2 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad duel data"})
	}

	switch action {
	case "accept":
		return h.accept(c, challengerID, challengedID, sender.ID)
	case "decline":
		if err := h.duels.Decline(challengerID, challengedID, sender.ID); err != nil {
			return h.respondErr(c, err)
		}
		_ = c.Edit("🏳️ Duel declined.")
		return c.Respond(&tele.CallbackResponse{})
	default:
		return c.Respond(&tele.CallbackResponse{})
	}
}

func (h *DuelHandler) accept(c tele.Context, challengerID, challengedID, responderID int64) error {
	var outcome *duel.Outcome
	err := h.userLock.WithPairLock(challengerID, challengedID, func() error {
		var err error
		outcome, err = h.duels.Accept(challengerID, challengedID, responderID)
		return err
	})
	if err != nil {
		return h.respondErr(c, err)
	}

	_ = c.Edit(fmt.Sprintf(
		"⚔️ Duel settled! Winner takes %d tokens (winner id %d, loser id %d).",
		outcome.Amount, outcome.WinnerID, outcome.LoserID,
	))
	return c.Respond(&tele.CallbackResponse{})
}

func (h *DuelHandler) respondErr(c tele.Context, err error) error {
	switch {
	case errors.Is(err, duel.ErrNoChallenge):
		return c.Respond(&tele.CallbackResponse{Text: "Duel expired"})
	case errors.Is(err, duel.ErrNotChallenged):
		return c.Respond(&tele.CallbackResponse{Text: "This duel is not for you"})
	case errors.Is(err, duel.ErrCannotAfford):
		return c.Respond(&tele.CallbackResponse{Text: "Someone can't afford the stake"})
	default:
		return c.Respond(&tele.CallbackResponse{Text: "Duel failed"})
	}
}
