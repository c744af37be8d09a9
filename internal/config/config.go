// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Games     GamesConfig     `mapstructure:"games"`
	Sweeps    SweepsConfig    `mapstructure:"sweeps"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// StorageConfig holds snapshot persistence configuration.
type StorageConfig struct {
	Path            string `mapstructure:"path"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GamesConfig holds game-specific configuration.
type GamesConfig struct {
	Coinflip CoinflipConfig `mapstructure:"coinflip"`
	Mines    MinesConfig    `mapstructure:"mines"`
	Doors    DoorsConfig    `mapstructure:"doors"`
}

// CoinflipConfig holds coinflip game configuration.
type CoinflipConfig struct {
	WinChance int   `mapstructure:"win_chance"`
	MaxBet    int64 `mapstructure:"max_bet"`
}

// MinesConfig holds mines game configuration.
type MinesConfig struct {
	MinBet   int64 `mapstructure:"min_bet"`
	MaxBet   int64 `mapstructure:"max_bet"`
	MinMines int   `mapstructure:"min_mines"`
	MaxMines int   `mapstructure:"max_mines"`
}

// DoorsConfig holds doors game configuration.
type DoorsConfig struct {
	MaxBet          int64 `mapstructure:"max_bet"`
	CooldownSeconds int   `mapstructure:"cooldown_seconds"`
}

// SweepsConfig holds background sweep intervals in seconds.
type SweepsConfig struct {
	DuelSeconds     int `mapstructure:"duel_seconds"`
	MinesSeconds    int `mapstructure:"mines_seconds"`
	GiveawaySeconds int `mapstructure:"giveaway_seconds"`
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, STORAGE_PATH, ADMIN_IDS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.path", "data/economy.json")
	v.SetDefault("storage.interval_seconds", 30)

	// Game defaults
	v.SetDefault("games.coinflip.win_chance", 45)
	v.SetDefault("games.coinflip.max_bet", 1000)
	v.SetDefault("games.mines.min_bet", 100)
	v.SetDefault("games.mines.max_bet", 1000)
	v.SetDefault("games.mines.min_mines", 1)
	v.SetDefault("games.mines.max_mines", 24)
	v.SetDefault("games.doors.max_bet", 1000)
	v.SetDefault("games.doors.cooldown_seconds", 5)

	// Sweep defaults
	v.SetDefault("sweeps.duel_seconds", 300)
	v.SetDefault("sweeps.mines_seconds", 60)
	v.SetDefault("sweeps.giveaway_seconds", 60)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
