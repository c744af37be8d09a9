package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/mines"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
)

// MinesHandler runs the mines game through an inline-keyboard board.
type MinesHandler struct {
	game      *mines.Game
	cooldowns *economy.CooldownStore
	userLock  *lock.UserLock
}

// NewMinesHandler creates a new MinesHandler.
func NewMinesHandler(game *mines.Game, cooldowns *economy.CooldownStore, userLock *lock.UserLock) *MinesHandler {
	return &MinesHandler{game: game, cooldowns: cooldowns, userLock: userLock}
}

// HandleMines handles /mines <bet> <mineCount>.
func (h *MinesHandler) HandleMines(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Reply("Usage: /mines <bet> <mines 1-24>")
	}

	bet, ok := model.ParseAmount(args[0])
	if !ok {
		return c.Reply("❌ Invalid bet amount.")
	}
	mineCount, err := strconv.Atoi(args[1])
	if err != nil {
		return c.Reply("❌ Invalid mine count.")
	}

	now := time.Now()
	window := time.Duration(mines.DefaultCooldown) * time.Second
	if ok, remaining := h.cooldowns.CheckShort(sender.ID, model.ActionMines, window, now); !ok {
		return c.Reply(fmt.Sprintf("⏳ Slow down! Try again in %s.", formatDuration(remaining)))
	}

	h.userLock.Lock(sender.ID)
	session, err := h.game.Start(sender.ID, bet, mineCount)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		switch {
		case errors.Is(err, mines.ErrSessionExists):
			return c.Reply("❌ Finish your current mines game first.")
		case errors.Is(err, economy.ErrInsufficientFunds):
			return c.Reply("❌ Not enough tokens for that bet.")
		default:
			return c.Reply("❌ " + err.Error())
		}
	}

	h.cooldowns.RecordShort(sender.ID, model.ActionMines, now)
	return c.Reply(
		fmt.Sprintf("💣 Mines: %d tokens, %d mines. Pick a cell!", session.Bet, session.MineCount),
		mines.BuildBoard(session),
	)
}

// HandleCallback routes mines board button presses.
func (h *MinesHandler) HandleCallback(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	action, param := mines.DecodeCallback(callbackData(c))
	switch action {
	case "reveal":
		cell, err := strconv.Atoi(param)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Bad cell"})
		}
		return h.reveal(c, sender.ID, cell)
	case "cashout":
		return h.cashOut(c, sender.ID)
	default:
		return c.Respond(&tele.CallbackResponse{})
	}
}

func (h *MinesHandler) reveal(c tele.Context, userID int64, cell int) error {
	h.userLock.Lock(userID)
	session, hasSession := h.game.Session(userID)
	if !hasSession || session.UserID != userID {
		h.userLock.Unlock(userID)
		return c.Respond(&tele.CallbackResponse{Text: "Not your game"})
	}

	result, err := h.game.Reveal(userID, cell)
	h.userLock.Unlock(userID)

	if err != nil {
		if errors.Is(err, mines.ErrNoSession) {
			return c.Respond(&tele.CallbackResponse{Text: "Game expired"})
		}
		return c.Respond(&tele.CallbackResponse{Text: err.Error()})
	}

	if result.Mine {
		_ = c.Edit(
			fmt.Sprintf("💥 Boom! You hit a mine and lost %d tokens.", session.Bet),
			mines.BuildRevealedBoard(session, cell),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Boom!"})
	}

	_ = c.Edit(
		fmt.Sprintf("💣 Mines: %d safe, %.2fx, cash out for %d tokens.",
			result.SafeCount, result.Multiplier, result.PotentialWin),
		mines.BuildBoard(session),
	)
	return c.Respond(&tele.CallbackResponse{})
}

func (h *MinesHandler) cashOut(c tele.Context, userID int64) error {
	h.userLock.Lock(userID)
	payout, err := h.game.CashOut(userID)
	h.userLock.Unlock(userID)

	if err != nil {
		switch {
		case errors.Is(err, mines.ErrNoSession):
			return c.Respond(&tele.CallbackResponse{Text: "Game expired"})
		case errors.Is(err, mines.ErrNothingRevealed):
			return c.Respond(&tele.CallbackResponse{Text: "Reveal a cell first"})
		default:
			return c.Respond(&tele.CallbackResponse{Text: err.Error()})
		}
	}

	_ = c.Edit(fmt.Sprintf("💰 Cashed out for %d tokens!", payout))
	return c.Respond(&tele.CallbackResponse{Text: "Cashed out!"})
}
