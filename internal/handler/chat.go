package handler

import (
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
)

// ChatHandler processes plain text messages: scramble answers first, then
// the anti-spam window, then the per-message trickle reward.
type ChatHandler struct {
	accountService  *service.AccountService
	minigameService *service.MinigameService
	userLock        *lock.UserLock
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(accountService *service.AccountService, minigameService *service.MinigameService, userLock *lock.UserLock) *ChatHandler {
	return &ChatHandler{
		accountService:  accountService,
		minigameService: minigameService,
		userLock:        userLock,
	}
}

// HandleText handles every non-command text message.
func (h *ChatHandler) HandleText(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil || sender.IsBot {
		return nil
	}

	// A running scramble gets first claim on the message.
	if _, running := h.minigameService.Round(chat.ID); running {
		prize, err := h.minigameService.Answer(chat.ID, sender.ID, c.Text())
		if err == nil && prize > 0 {
			return c.Reply(fmt.Sprintf("🧩 Correct! %s wins %d tokens!", displayName(sender), prize))
		}
		if err != nil && !errors.Is(err, service.ErrNoRound) {
			return nil
		}
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	if penalty := h.accountService.TrackMessage(sender.ID); penalty > 0 {
		return c.Reply(fmt.Sprintf("🚫 %s, easy on the spam! -%d tokens.", displayName(sender), penalty))
	}

	h.accountService.ChatReward(sender.ID)
	return nil
}

// MinigameHandler starts scramble rounds.
type MinigameHandler struct {
	minigameService *service.MinigameService
}

// NewMinigameHandler creates a new MinigameHandler.
func NewMinigameHandler(minigameService *service.MinigameService) *MinigameHandler {
	return &MinigameHandler{minigameService: minigameService}
}

// HandleScramble handles /scramble [pot], opening a round in the chat.
func (h *MinigameHandler) HandleScramble(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	pot := int64(100)
	if args := c.Args(); len(args) > 0 {
		if p, ok := model.ParseAmount(args[0]); ok && p > 0 {
			pot = p
		}
	}

	round, err := h.minigameService.Start(chat.ID, pot, service.DefaultRoundDuration)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoundActive):
			return c.Reply("❌ A scramble is already running here.")
		case errors.Is(err, service.ErrNoQuestions):
			return c.Reply("❌ No more words in the bank.")
		default:
			return c.Reply("❌ Could not start a round.")
		}
	}

	msg := fmt.Sprintf("🧩 Unscramble this word for %d tokens:\n\n`%s`", round.Pot, round.Scrambled)
	if round.Hint != "" {
		msg += "\nHint: " + round.Hint
	}
	if err := c.Reply(msg); err != nil {
		return err
	}

	// Announce the timeout unless someone already won; Expire returning
	// false means the round vanished, which is the silent success path.
	startedAt := round.StartedAt
	chatID := chat.ID
	time.AfterFunc(round.EndsAt.Sub(startedAt)+time.Second, func() {
		if expired, ok := h.minigameService.Expire(chatID, startedAt); ok {
			_, _ = c.Bot().Send(c.Chat(), fmt.Sprintf("⌛ Time's up! The word was `%s`.", expired.Word))
		}
	})
	return nil
}
