package handler

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/odds"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
)

// AdminHandler implements the admin-only surface. Admin gating happens in
// the middleware; these handlers assume the sender is already verified.
type AdminHandler struct {
	ledger        *economy.Ledger
	cooldowns     *economy.CooldownStore
	limits        *economy.DailyLimitTracker
	settings      *economy.Settings
	shopService   *service.ShopService
	inviteService *service.InviteService
	userLock      *lock.UserLock
	rng           odds.Rand

	resetMu   sync.Mutex
	resetCode string
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	ledger *economy.Ledger,
	cooldowns *economy.CooldownStore,
	limits *economy.DailyLimitTracker,
	settings *economy.Settings,
	shopService *service.ShopService,
	inviteService *service.InviteService,
	userLock *lock.UserLock,
	rng odds.Rand,
) *AdminHandler {
	return &AdminHandler{
		ledger:        ledger,
		cooldowns:     cooldowns,
		limits:        limits,
		settings:      settings,
		shopService:   shopService,
		inviteService: inviteService,
		userLock:      userLock,
		rng:           rng,
	}
}

// targetUser resolves the target of an admin command: the replied-to user,
// or a numeric ID as the first argument.
func targetUser(c tele.Context) (int64, []string, bool) {
	args := c.Args()
	if reply := c.Message().ReplyTo; reply != nil && reply.Sender != nil {
		return reply.Sender.ID, args, true
	}
	if len(args) > 0 {
		if id, err := strconv.ParseInt(args[0], 10, 64); err == nil {
			return id, args[1:], true
		}
	}
	return 0, args, false
}

// HandleAddToken handles /addtoken <user> <amount>.
func (h *AdminHandler) HandleAddToken(c tele.Context) error {
	userID, args, ok := targetUser(c)
	if !ok || len(args) < 1 {
		return c.Reply("Usage: /addtoken <user_id|reply> <amount>")
	}
	amount, ok := model.ParseAmount(args[0])
	if !ok || amount <= 0 {
		return c.Reply("❌ Invalid amount.")
	}

	var balance int64
	err := h.userLock.WithLock(userID, func() error {
		var err error
		balance, err = h.ledger.Adjust(userID, amount)
		return err
	})
	if err != nil {
		return c.Reply("❌ " + err.Error())
	}
	return c.Reply(fmt.Sprintf("✅ Added %d tokens to %d, balance now %d.", amount, userID, balance))
}

// HandleRemoveToken handles /removetoken <user> <amount>. Removing more
// than the balance drains it to zero rather than failing.
func (h *AdminHandler) HandleRemoveToken(c tele.Context) error {
	userID, args, ok := targetUser(c)
	if !ok || len(args) < 1 {
		return c.Reply("Usage: /removetoken <user_id|reply> <amount>")
	}
	amount, ok := model.ParseAmount(args[0])
	if !ok || amount <= 0 {
		return c.Reply("❌ Invalid amount.")
	}

	var balance int64
	err := h.userLock.WithLock(userID, func() error {
		if bal := h.ledger.Balance(userID); amount > bal {
			amount = bal
		}
		if amount == 0 {
			balance = h.ledger.Balance(userID)
			return nil
		}
		var err error
		balance, err = h.ledger.Adjust(userID, -amount)
		return err
	})
	if err != nil {
		return c.Reply("❌ " + err.Error())
	}
	return c.Reply(fmt.Sprintf("✅ Removed %d tokens from %d, balance now %d.", amount, userID, balance))
}

// HandleAdminBalance handles /adminbalance <user>, inspecting any account.
func (h *AdminHandler) HandleAdminBalance(c tele.Context) error {
	userID, _, ok := targetUser(c)
	if !ok {
		return c.Reply("Usage: /adminbalance <user_id|reply>")
	}

	acc, exists := h.ledger.Account(userID)
	if !exists {
		return c.Reply(fmt.Sprintf("User %d has no account yet.", userID))
	}
	return c.Reply(fmt.Sprintf(
		"User %d: %d tokens (%s)\nEarned: %d | Spent: %d",
		userID, acc.Balance, economy.Rank(acc.Balance), acc.TotalEarned, acc.TotalSpent,
	))
}

// HandleAddShop handles /addshop <price> <name...>.
func (h *AdminHandler) HandleAddShop(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Reply("Usage: /addshop <price> <name>")
	}
	price, ok := model.ParseAmount(args[0])
	if !ok || price <= 0 {
		return c.Reply("❌ Invalid price.")
	}

	item := model.ShopItem{Name: strings.Join(args[1:], " "), Price: price}
	if err := h.shopService.AddItem(item); err != nil {
		return c.Reply("❌ " + err.Error())
	}
	return c.Reply(fmt.Sprintf("✅ Added %s for %d tokens.", item.Name, item.Price))
}

// HandleDelShop handles /delshop <name...>.
func (h *AdminHandler) HandleDelShop(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("Usage: /delshop <name>")
	}
	name := strings.Join(args, " ")
	if err := h.shopService.DeleteItem(name); err != nil {
		return c.Reply("❌ " + err.Error())
	}
	return c.Reply(fmt.Sprintf("✅ Removed %s from the shop.", name))
}

// HandleResetData handles /resetdata. The first call issues a one-shot
// confirmation code; repeating the command with the code wipes balances,
// cooldowns, daily totals and invite records.
func (h *AdminHandler) HandleResetData(c tele.Context) error {
	args := c.Args()

	h.resetMu.Lock()
	defer h.resetMu.Unlock()

	if len(args) == 0 || h.resetCode == "" || args[0] != h.resetCode {
		h.resetCode = fmt.Sprintf("%06d", h.rng.Intn(1_000_000))
		return c.Reply(fmt.Sprintf(
			"⚠️ This wipes ALL balances, cooldowns and invites.\nConfirm with: /resetdata %s",
			h.resetCode,
		))
	}

	h.resetCode = ""
	h.ledger.ResetAll()
	h.cooldowns.ResetAll()
	h.limits.ResetAll()
	h.inviteService.ResetAll()
	return c.Reply("🧹 All economy data has been reset.")
}

// HandleConfigCoinflip handles /config_cf <win_chance> <max_bet>.
func (h *AdminHandler) HandleConfigCoinflip(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		cfg := h.settings.Coinflip()
		return c.Reply(fmt.Sprintf(
			"Coinflip: win chance %d%%, max bet %d.\nUsage: /config_cf <win_chance> <max_bet>",
			cfg.WinChance, cfg.MaxBet,
		))
	}

	winChance, err := strconv.Atoi(args[0])
	if err != nil || winChance < 1 || winChance > 99 {
		return c.Reply("❌ Win chance must be 1-99.")
	}
	maxBet, ok := model.ParseAmount(args[1])
	if !ok || maxBet <= 0 {
		return c.Reply("❌ Invalid max bet.")
	}

	h.settings.SetCoinflip(economy.CoinflipSettings{WinChance: winChance, MaxBet: maxBet})
	return c.Reply(fmt.Sprintf("✅ Coinflip set to %d%% win chance, max bet %d.", winChance, maxBet))
}

// HandleConfigMines handles /config_mines <min_bet> <max_bet> <min_mines> <max_mines>.
func (h *AdminHandler) HandleConfigMines(c tele.Context) error {
	args := c.Args()
	if len(args) < 4 {
		cfg := h.settings.Mines()
		return c.Reply(fmt.Sprintf(
			"Mines: bets %d-%d, mines %d-%d.\nUsage: /config_mines <min_bet> <max_bet> <min_mines> <max_mines>",
			cfg.MinBet, cfg.MaxBet, cfg.MinMines, cfg.MaxMines,
		))
	}

	minBet, ok1 := model.ParseAmount(args[0])
	maxBet, ok2 := model.ParseAmount(args[1])
	minMines, err1 := strconv.Atoi(args[2])
	maxMines, err2 := strconv.Atoi(args[3])
	if !ok1 || !ok2 || err1 != nil || err2 != nil ||
		minBet <= 0 || maxBet < minBet ||
		minMines < 1 || maxMines > 24 || maxMines < minMines {
		return c.Reply("❌ Invalid mines configuration.")
	}

	h.settings.SetMines(economy.MinesSettings{
		MinBet: minBet, MaxBet: maxBet, MinMines: minMines, MaxMines: maxMines,
	})
	return c.Reply(fmt.Sprintf("✅ Mines set to bets %d-%d, mines %d-%d.", minBet, maxBet, minMines, maxMines))
}
