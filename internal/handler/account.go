package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
)

// AccountHandler handles balance display and the earn-action commands.
type AccountHandler struct {
	ledger         *economy.Ledger
	accountService *service.AccountService
	inviteService  *service.InviteService
	userLock       *lock.UserLock
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger *economy.Ledger, accountService *service.AccountService, inviteService *service.InviteService, userLock *lock.UserLock) *AccountHandler {
	return &AccountHandler{
		ledger:         ledger,
		accountService: accountService,
		inviteService:  inviteService,
		userLock:       userLock,
	}
}

// HandleStart handles the /start command. A numeric payload is treated as a
// referral: the referrer earns the invite reward the first time this user
// lands.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
		if inviterID, err := strconv.ParseInt(payload, 10, 64); err == nil {
			if reward, err := h.inviteService.RecordInvite(inviterID, sender.ID); err == nil {
				_ = c.Reply(fmt.Sprintf("🎉 Referral counted! The inviter earned %d tokens.", reward))
			}
		}
	}

	return c.Reply(fmt.Sprintf(
		"👋 Welcome %s!\n\n"+
			"Commands:\n"+
			"/balance - your tokens and rank\n"+
			"/daily /work /crime - earn tokens\n"+
			"/coinflip <bet> <heads|tails> - flip a coin\n"+
			"/doors <bet> - open a door\n"+
			"/mines <bet> <mines> - play mines\n"+
			"/duel <amount> - challenge (reply to someone)\n"+
			"/giveaway <amount> <winners> - host a giveaway\n"+
			"/gift <amount> - gift tokens (reply to someone)\n"+
			"/shop /buy - the token shop",
		displayName(sender),
	))
}

// HandleBalance handles the /balance command.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	acc, _ := h.ledger.Account(sender.ID)
	return c.Reply(fmt.Sprintf(
		"💰 %s\nBalance: %d tokens\nRank: %s\nEarned: %d | Spent: %d",
		displayName(sender), acc.Balance, economy.Rank(acc.Balance),
		acc.TotalEarned, acc.TotalSpent,
	))
}

// HandleDaily handles the /daily command.
func (h *AccountHandler) HandleDaily(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.userLock.Lock(sender.ID)
	reward, err := h.accountService.Daily(sender.ID)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		if handled, rerr := replyCooldown(c, err); handled {
			return rerr
		}
		return c.Reply("❌ Something went wrong, try again later.")
	}

	return c.Reply(fmt.Sprintf("✅ Daily reward claimed: +%d tokens!", reward))
}

// HandleWork handles the /work command.
func (h *AccountHandler) HandleWork(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.userLock.Lock(sender.ID)
	reward, job, err := h.accountService.Work(sender.ID)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		if handled, rerr := replyCooldown(c, err); handled {
			return rerr
		}
		return c.Reply("❌ Something went wrong, try again later.")
	}

	return c.Reply(fmt.Sprintf("💼 You %s and earned %d tokens!", job, reward))
}

// HandleCrime handles the /crime command.
func (h *AccountHandler) HandleCrime(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	h.userLock.Lock(sender.ID)
	delta, success, err := h.accountService.Crime(sender.ID)
	h.userLock.Unlock(sender.ID)

	if err != nil {
		if handled, rerr := replyCooldown(c, err); handled {
			return rerr
		}
		return c.Reply("❌ Something went wrong, try again later.")
	}

	if success {
		return c.Reply(fmt.Sprintf("😈 The heist paid off: +%d tokens!", delta))
	}
	return c.Reply(fmt.Sprintf("🚔 You got caught and paid %d tokens in fines.", -delta))
}

// HandleTop handles the /top command, showing the richest users.
func (h *AccountHandler) HandleTop(c tele.Context) error {
	top := h.ledger.Top(10)
	if len(top) == 0 {
		return c.Reply("📉 Nobody has any tokens yet.")
	}

	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard\n")
	for i, acc := range top {
		sb.WriteString(fmt.Sprintf("%d. %d tokens %s (id %d)\n",
			i+1, acc.Balance, economy.Rank(acc.Balance), acc.UserID))
	}
	return c.Reply(sb.String())
}
