// Package store persists the whole economy state as one JSON snapshot
// file. Every save is a full rewrite; there is no incremental journal.
// Write failures are logged and the bot keeps serving from memory.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"token-economy-bot/internal/economy"
	"token-economy-bot/internal/game/giveaway"
	"token-economy-bot/internal/model"
	"token-economy-bot/internal/service"
)

// snapshot is the on-disk shape. One file, one document.
type snapshot struct {
	Accounts   map[int64]model.Account      `json:"accounts"`
	Cooldowns  map[string]map[int64]string  `json:"cooldowns"`
	DailyUsage []economy.SnapshotEntry      `json:"daily_usage"`
	Shop       map[string]model.ShopItem    `json:"shop"`
	Invites    map[int64]model.InviteRecord `json:"invites"`
	Coinflip   economy.CoinflipSettings     `json:"coinflip"`
	Mines      economy.MinesSettings        `json:"mines"`
	Giveaways  map[string]giveaway.Session  `json:"giveaways"`
	SavedAt    time.Time                    `json:"saved_at"`
}

// Store snapshots and restores all persistent aggregates.
type Store struct {
	fs   afero.Fs
	path string

	ledger    *economy.Ledger
	cooldowns *economy.CooldownStore
	limits    *economy.DailyLimitTracker
	settings  *economy.Settings
	shop      *service.ShopService
	invites   *service.InviteService
	giveaways *giveaway.Manager
}

// New creates a Store writing to path on fs.
func New(
	fs afero.Fs,
	path string,
	ledger *economy.Ledger,
	cooldowns *economy.CooldownStore,
	limits *economy.DailyLimitTracker,
	settings *economy.Settings,
	shop *service.ShopService,
	invites *service.InviteService,
	giveaways *giveaway.Manager,
) *Store {
	return &Store{
		fs:        fs,
		path:      path,
		ledger:    ledger,
		cooldowns: cooldowns,
		limits:    limits,
		settings:  settings,
		shop:      shop,
		invites:   invites,
		giveaways: giveaways,
	}
}

// Load reads the snapshot file and restores every aggregate. A missing
// file is a fresh start, not an error.
func (s *Store) Load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", s.path).Msg("no snapshot file, starting fresh")
			return nil
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	s.ledger.Restore(snap.Accounts)
	s.cooldowns.Restore(snap.Cooldowns)
	s.limits.Restore(snap.DailyUsage)
	s.shop.Restore(snap.Shop)
	s.invites.Restore(snap.Invites)
	s.giveaways.Restore(snap.Giveaways)
	if snap.Coinflip != (economy.CoinflipSettings{}) {
		s.settings.SetCoinflip(snap.Coinflip)
	}
	if snap.Mines != (economy.MinesSettings{}) {
		s.settings.SetMines(snap.Mines)
	}

	log.Info().
		Str("path", s.path).
		Int("accounts", len(snap.Accounts)).
		Time("saved_at", snap.SavedAt).
		Msg("snapshot loaded")
	return nil
}

// Save writes the full snapshot. The write goes to a temp file first and
// is renamed into place so a crash mid-write leaves the old snapshot
// intact.
func (s *Store) Save() error {
	snap := snapshot{
		Accounts:   s.ledger.Snapshot(),
		Cooldowns:  s.cooldowns.Snapshot(),
		DailyUsage: s.limits.Snapshot(),
		Shop:       s.shop.Snapshot(),
		Invites:    s.invites.Snapshot(),
		Coinflip:   s.settings.Coinflip(),
		Mines:      s.settings.Mines(),
		Giveaways:  s.giveaways.Snapshot(),
		SavedAt:    time.Now(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Run saves on every tick until the context ends, then flushes once more.
// Save errors are logged, never fatal; the bot stays up on a full disk.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Save(); err != nil {
				log.Error().Err(err).Msg("periodic snapshot failed")
			}
		case <-ctx.Done():
			if err := s.Save(); err != nil {
				log.Error().Err(err).Msg("shutdown snapshot failed")
			} else {
				log.Info().Str("path", s.path).Msg("final snapshot written")
			}
			return
		}
	}
}
