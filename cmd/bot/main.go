// Package main is the entry point for the token economy bot.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"token-economy-bot/internal/bot"
	"token-economy-bot/internal/config"
	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game"
	"token-economy-bot/internal/game/coinflip"
	"token-economy-bot/internal/game/doors"
	"token-economy-bot/internal/game/duel"
	"token-economy-bot/internal/game/giveaway"
	"token-economy-bot/internal/game/mines"
	"token-economy-bot/internal/game/odds"
	"token-economy-bot/internal/pkg/lock"
	"token-economy-bot/internal/service"
	"token-economy-bot/internal/store"
)

// wordBank is a tiny built-in scramble source; deployments can swap in a
// bigger one.
type wordBank struct {
	rng   odds.Rand
	words []service.Question
}

func (w *wordBank) Next() (service.Question, bool) {
	if len(w.words) == 0 {
		return service.Question{}, false
	}
	return w.words[w.rng.Intn(len(w.words))], true
}

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := odds.New(rng)

	// Core economy state
	ledger := economy.NewLedger()
	cooldowns := economy.NewCooldownStore()
	limits := economy.NewDailyLimitTracker()
	settings := economy.DefaultSettings()
	settings.SetCoinflip(economy.CoinflipSettings{
		WinChance: cfg.Games.Coinflip.WinChance,
		MaxBet:    cfg.Games.Coinflip.MaxBet,
	})
	settings.SetMines(economy.MinesSettings{
		MinBet:   cfg.Games.Mines.MinBet,
		MaxBet:   cfg.Games.Mines.MaxBet,
		MinMines: cfg.Games.Mines.MinMines,
		MaxMines: cfg.Games.Mines.MaxMines,
	})

	// User lock
	userLock := lock.NewUserLock()

	// Registry games
	registry := game.NewRegistry()
	if err := registry.Register(coinflip.New(engine, settings)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register coinflip")
	}
	doorsGame := doors.New(engine, &doors.Config{
		MaxBet:   cfg.Games.Doors.MaxBet,
		Cooldown: cfg.Games.Doors.CooldownSeconds,
	})
	if err := registry.Register(doorsGame); err != nil {
		log.Fatal().Err(err).Msg("Failed to register doors")
	}
	log.Info().
		Int("game_count", registry.Count()).
		Strs("games", registry.Commands()).
		Msg("Games registered")

	// Session games
	minesGame := mines.New(ledger, settings, rng, nil)
	duels := duel.New(ledger, rng, nil)
	giveaways := giveaway.New(ledger, limits, rng, nil)

	// Services
	accountService := service.NewAccountService(ledger, cooldowns, rng, nil)
	giftService := service.NewGiftService(ledger, cooldowns, limits, nil)
	shopService := service.NewShopService(ledger, cooldowns, nil)
	inviteService := service.NewInviteService(ledger, cooldowns, nil)
	minigameService := service.NewMinigameService(ledger, &wordBank{
		rng: rng,
		words: []service.Question{
			{Word: "jackpot", Hint: "the big win"},
			{Word: "token", Hint: "what this bot is all about"},
			{Word: "giveaway", Hint: "free stuff"},
			{Word: "fortune", Hint: "good luck brings it"},
		},
	}, rng, nil)

	// Persistence
	snapshots := store.New(
		afero.NewOsFs(), cfg.Storage.Path,
		ledger, cooldowns, limits, settings,
		shopService, inviteService, giveaways,
	)
	if err := snapshots.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load snapshot")
	}

	// Create bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:          cfg,
		Ledger:          ledger,
		Cooldowns:       cooldowns,
		Limits:          limits,
		Settings:        settings,
		Registry:        registry,
		MinesGame:       minesGame,
		Duels:           duels,
		Giveaways:       giveaways,
		AccountService:  accountService,
		GiftService:     giftService,
		ShopService:     shopService,
		InviteService:   inviteService,
		MinigameService: minigameService,
		UserLock:        userLock,
		RNG:             rng,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Background loops
	go snapshots.Run(ctx, time.Duration(cfg.Storage.IntervalSeconds)*time.Second)
	go runSweeps(ctx, cfg, minesGame, duels, giveaways, accountService, limits)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	cancel()

	// Give the store's shutdown flush a moment to land.
	time.Sleep(time.Second)
	log.Info().Msg("Bot stopped gracefully")
}

// runSweeps drives all periodic cleanup: expired duels, abandoned mines
// sessions, overdue giveaways, the midnight daily-cap reset and the hourly
// spam-tracker cleanup. Giveaway announcements go through the creation
// timer; the sweep is the silent backstop after a restart.
func runSweeps(
	ctx context.Context,
	cfg *config.Config,
	minesGame *mines.Game,
	duels *duel.Manager,
	giveaways *giveaway.Manager,
	accountService *service.AccountService,
	limits *economy.DailyLimitTracker,
) {
	duelTicker := time.NewTicker(time.Duration(cfg.Sweeps.DuelSeconds) * time.Second)
	minesTicker := time.NewTicker(time.Duration(cfg.Sweeps.MinesSeconds) * time.Second)
	giveawayTicker := time.NewTicker(time.Duration(cfg.Sweeps.GiveawaySeconds) * time.Second)
	midnightTimer := time.NewTimer(untilMidnight(time.Now()))
	spamTicker := time.NewTicker(time.Hour)
	defer duelTicker.Stop()
	defer minesTicker.Stop()
	defer giveawayTicker.Stop()
	defer midnightTimer.Stop()
	defer spamTicker.Stop()

	for {
		select {
		case <-duelTicker.C:
			if n := duels.SweepExpired(); n > 0 {
				log.Debug().Int("count", n).Msg("Swept expired duels")
			}
		case <-minesTicker.C:
			if n := minesGame.SweepExpired(); n > 0 {
				log.Debug().Int("count", n).Msg("Swept expired mines sessions")
			}
		case <-giveawayTicker.C:
			for _, id := range giveaways.Expired() {
				result, err := giveaways.Resolve(id)
				if err != nil {
					continue
				}
				log.Info().Str("giveaway", id).Bool("refunded", result.Refunded).Msg("Resolved overdue giveaway")
			}
		case <-midnightTimer.C:
			limits.ResetAll()
			midnightTimer.Reset(untilMidnight(time.Now()))
			log.Info().Msg("Daily limits reset")
		case <-spamTicker.C:
			accountService.CleanupSpamTrackers()
		case <-ctx.Done():
			return
		}
	}
}

// untilMidnight returns the wait until the next local midnight.
func untilMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
