package handler

import (
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
)

// GameHandler runs the single-bet registry games (coinflip, doors).
type GameHandler struct {
	ledger    *economy.Ledger
	cooldowns *economy.CooldownStore
	registry  *game.Registry
	userLock  *lock.UserLock
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(ledger *economy.Ledger, cooldowns *economy.CooldownStore, registry *game.Registry, userLock *lock.UserLock) *GameHandler {
	return &GameHandler{
		ledger:    ledger,
		cooldowns: cooldowns,
		registry:  registry,
		userLock:  userLock,
	}
}

// HandleCoinflip handles /coinflip <bet> <heads|tails>.
func (h *GameHandler) HandleCoinflip(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Reply("Usage: /coinflip <bet> <heads|tails>")
	}

	bet, ok := model.ParseAmount(args[0])
	if !ok {
		return c.Reply("❌ Invalid bet amount.")
	}

	return h.play(c, "coinflip", bet, map[string]any{"choice": args[1]})
}

// HandleDoors handles /doors <bet>.
func (h *GameHandler) HandleDoors(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: /doors <bet>")
	}

	bet, ok := model.ParseAmount(args[0])
	if !ok {
		return c.Reply("❌ Invalid bet amount.")
	}

	return h.play(c, "doors", bet, nil)
}

// play runs one registry game end to end: cooldown gate, bet validation,
// affordability, then the draw and the single settling ledger adjustment.
func (h *GameHandler) play(c tele.Context, command string, bet int64, params map[string]any) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	g, ok := h.registry.Get(command)
	if !ok {
		return c.Reply("❌ Unknown game.")
	}

	now := time.Now()
	window := time.Duration(g.CooldownSeconds()) * time.Second
	if ok, remaining := h.cooldowns.CheckShort(sender.ID, command, window, now); !ok {
		return c.Reply(fmt.Sprintf("⏳ Slow down! Try again in %s.", formatDuration(remaining)))
	}

	if err := g.ValidateBet(bet, params); err != nil {
		return c.Reply("❌ " + err.Error())
	}

	h.userLock.Lock(sender.ID)
	defer h.userLock.Unlock(sender.ID)

	if h.ledger.Balance(sender.ID) < bet {
		shortfall := h.ledger.Shortfall(sender.ID, bet)
		return c.Reply(fmt.Sprintf("❌ Not enough tokens, you need %d more.", shortfall))
	}

	result, err := g.Play(sender.ID, bet, params)
	if err != nil {
		return c.Reply("❌ " + err.Error())
	}

	balance, err := h.ledger.Adjust(sender.ID, result.Delta)
	if err != nil {
		if errors.Is(err, economy.ErrInsufficientFunds) {
			return c.Reply("❌ Not enough tokens for that bet.")
		}
		return c.Reply("❌ Something went wrong, try again later.")
	}

	h.cooldowns.RecordShort(sender.ID, command, now)
	return c.Reply(h.formatResult(command, result, balance))
}

func (h *GameHandler) formatResult(command string, result *game.Result, balance int64) string {
	switch command {
	case "coinflip":
		face, _ := result.Details["face"].(string)
		if result.Won {
			return fmt.Sprintf("🪙 The coin shows %s, you win +%d! Balance: %d", face, result.Delta, balance)
		}
		return fmt.Sprintf("🪙 The coin shows %s, you lose %d. Balance: %d", face, -result.Delta, balance)
	case "doors":
		tier, _ := result.Details["tier"].(string)
		prize, _ := result.Details["prize"].(int64)
		if prize == 0 {
			return fmt.Sprintf("🚪 The door was empty. You lose %d. Balance: %d", -result.Delta, balance)
		}
		return fmt.Sprintf("🚪 Behind the door: %s, prize %d (net %+d). Balance: %d", tier, prize, result.Delta, balance)
	}

	if result.Won {
		return fmt.Sprintf("🎉 You win +%d! Balance: %d", result.Delta, balance)
	}
	return fmt.Sprintf("💸 You lose %d. Balance: %d", -result.Delta, balance)
}
