package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"token-economy-bot/internal/config"
	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game"
	"token-economy-bot/internal/game/duel"
	"token-economy-bot/internal/game/giveaway"
	"token-economy-bot/internal/game/mines"
	"token-economy-bot/internal/game/odds"
	"token-economy-bot/internal/handler"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	accountHandler  *handler.AccountHandler
	gameHandler     *handler.GameHandler
	minesHandler    *handler.MinesHandler
	duelHandler     *handler.DuelHandler
	giveawayHandler *handler.GiveawayHandler
	giftHandler     *handler.GiftHandler
	shopHandler     *handler.ShopHandler
	inviteHandler   *handler.InviteHandler
	chatHandler     *handler.ChatHandler
	minigameHandler *handler.MinigameHandler
	adminHandler    *handler.AdminHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config          *config.Config
	Ledger          *economy.Ledger
	Cooldowns       *economy.CooldownStore
	Limits          *economy.DailyLimitTracker
	Settings        *economy.Settings
	Registry        *game.Registry
	MinesGame       *mines.Game
	Duels           *duel.Manager
	Giveaways       *giveaway.Manager
	AccountService  *service.AccountService
	GiftService     *service.GiftService
	ShopService     *service.ShopService
	InviteService   *service.InviteService
	MinigameService *service.MinigameService
	UserLock        *lock.UserLock
	RNG             odds.Rand
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot: teleBot,
		cfg: deps.Config,
	}

	// Initialize handlers
	b.accountHandler = handler.NewAccountHandler(deps.Ledger, deps.AccountService, deps.InviteService, deps.UserLock)
	b.gameHandler = handler.NewGameHandler(deps.Ledger, deps.Cooldowns, deps.Registry, deps.UserLock)
	b.minesHandler = handler.NewMinesHandler(deps.MinesGame, deps.Cooldowns, deps.UserLock)
	b.duelHandler = handler.NewDuelHandler(deps.Duels, deps.Cooldowns, deps.UserLock)
	b.giveawayHandler = handler.NewGiveawayHandler(deps.Giveaways, deps.Cooldowns, deps.UserLock)
	b.giftHandler = handler.NewGiftHandler(deps.GiftService, deps.UserLock)
	b.shopHandler = handler.NewShopHandler(deps.ShopService, deps.UserLock)
	b.inviteHandler = handler.NewInviteHandler(deps.InviteService)
	b.chatHandler = handler.NewChatHandler(deps.AccountService, deps.MinigameService, deps.UserLock)
	b.minigameHandler = handler.NewMinigameHandler(deps.MinigameService)
	b.adminHandler = handler.NewAdminHandler(
		deps.Ledger, deps.Cooldowns, deps.Limits, deps.Settings,
		deps.ShopService, deps.InviteService, deps.UserLock, deps.RNG,
	)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	// Account and earn actions
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/balance", b.accountHandler.HandleBalance)
	b.bot.Handle("/daily", b.accountHandler.HandleDaily)
	b.bot.Handle("/work", b.accountHandler.HandleWork)
	b.bot.Handle("/crime", b.accountHandler.HandleCrime)
	b.bot.Handle("/top", b.accountHandler.HandleTop)

	// Wager games
	b.bot.Handle("/coinflip", b.gameHandler.HandleCoinflip)
	b.bot.Handle("/doors", b.gameHandler.HandleDoors)
	b.bot.Handle("/mines", b.minesHandler.HandleMines)
	b.bot.Handle("/duel", b.duelHandler.HandleDuel)
	b.bot.Handle("/giveaway", b.giveawayHandler.HandleGiveaway)

	// Transfers and shop
	b.bot.Handle("/gift", b.giftHandler.HandleGift)
	b.bot.Handle("/shop", b.shopHandler.HandleShop)
	b.bot.Handle("/buy", b.shopHandler.HandleBuy)

	// Invites and minigame
	b.bot.Handle("/invitelink", b.inviteHandler.HandleInviteLink)
	b.bot.Handle("/invites", b.inviteHandler.HandleInvites)
	b.bot.Handle("/scramble", b.minigameHandler.HandleScramble)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/addtoken", b.adminHandler.HandleAddToken)
	adminGroup.Handle("/removetoken", b.adminHandler.HandleRemoveToken)
	adminGroup.Handle("/adminbalance", b.adminHandler.HandleAdminBalance)
	adminGroup.Handle("/addshop", b.adminHandler.HandleAddShop)
	adminGroup.Handle("/delshop", b.adminHandler.HandleDelShop)
	adminGroup.Handle("/resetdata", b.adminHandler.HandleResetData)
	adminGroup.Handle("/config_cf", b.adminHandler.HandleConfigCoinflip)
	adminGroup.Handle("/config_mines", b.adminHandler.HandleConfigMines)

	// Plain text: scramble answers, anti-spam, chat rewards
	b.bot.Handle(tele.OnText, b.chatHandler.HandleText)

	// Inline keyboard callbacks
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to the owning handler by data prefix.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, mines.CallbackPrefix):
		return b.minesHandler.HandleCallback(c)
	case strings.HasPrefix(data, handler.DuelCallbackPrefix):
		return b.duelHandler.HandleCallback(c)
	case strings.HasPrefix(data, handler.GiveawayCallbackPrefix):
		return b.giveawayHandler.HandleCallback(c)
	default:
		return c.Respond(&tele.CallbackResponse{})
	}
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
