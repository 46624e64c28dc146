package bot

import (
	"errors"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"StrawberryBot/ledger"
	"StrawberryBot/store"
)

// Config is read from the environment (and a .env file when present).
type Config struct {
	Token            string        `env:"DISCORD_TOKEN,required,notEmpty"`
	GuildID          string        `env:"GUILD_ID"`
	OwnerID          string        `env:"OWNER_ID"`
	AdditionalOwners []string      `env:"ADDITIONAL_OWNER_IDS" envSeparator:","`
	Prefix           string        `env:"COMMAND_PREFIX" envDefault:"!"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile          string        `env:"LOG_FILE"`
	Debug            bool          `env:"DEBUG"`
	RateLimit        int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	BugReportFile    string        `env:"BUG_REPORT_FILE"`
	CleanupDays      int           `env:"CLEANUP_INACTIVE_DAYS" envDefault:"0"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`

	Store     StoreConfig
	Economy   EconomyConfig
	Minecraft MinecraftConfig
	Features  FeatureConfig
}

type StoreConfig struct {
	Backend     string        `env:"STORE_BACKEND"`
	DataDir     string        `env:"DATA_DIR" envDefault:"data"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	RedisPrefix string        `env:"REDIS_PREFIX" envDefault:"strawberry:"`
	Autosave    time.Duration `env:"AUTOSAVE_INTERVAL" envDefault:"5m"`
}

type EconomyConfig struct {
	StartingBalance  int64         `env:"STARTING_BALANCE" envDefault:"10"`
	DailyReward      int64         `env:"DAILY_REWARD" envDefault:"5"`
	StreakBonus      int64         `env:"STREAK_BONUS" envDefault:"2"`
	MaxStreakBonus   int64         `env:"MAX_STREAK_BONUS" envDefault:"10"`
	DailyCooldown    time.Duration `env:"DAILY_COOLDOWN" envDefault:"24h"`
	StreakWindow     time.Duration `env:"STREAK_WINDOW" envDefault:"48h"`
	MinBet           int64         `env:"MIN_BET" envDefault:"1"`
	MaxBet           int64         `env:"MAX_BET" envDefault:"1000"`
	RouletteCooldown time.Duration `env:"ROULETTE_COOLDOWN" envDefault:"30s"`
	TransferCooldown time.Duration `env:"TRANSFER_COOLDOWN" envDefault:"60s"`
}

type MinecraftConfig struct {
	Host     string        `env:"RCON_HOST"`
	Port     int           `env:"RCON_PORT" envDefault:"25575"`
	Password string        `env:"RCON_PASSWORD"`
	OwnerID  string        `env:"MC_SERVER_OWNER_ID"`
	Timeout  time.Duration `env:"RCON_TIMEOUT" envDefault:"5s"`
}

// FeatureConfig switches whole command categories on or off.
type FeatureConfig struct {
	Economy    bool `env:"ENABLE_ECONOMY" envDefault:"true"`
	Games      bool `env:"ENABLE_GAMES" envDefault:"true"`
	Voice      bool `env:"ENABLE_VOICE" envDefault:"true"`
	Admin      bool `env:"ENABLE_ADMIN" envDefault:"true"`
	Minecraft  bool `env:"ENABLE_MINECRAFT" envDefault:"true"`
	BugReports bool `env:"ENABLE_BUG_REPORTS" envDefault:"true"`
}

// ParseEnv fills target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadConfig loads .env (if any) and parses the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Prefix == "" {
		errs = append(errs, errors.New("COMMAND_PREFIX must not be empty"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	e := c.Economy
	if e.StartingBalance < 0 || e.DailyReward < 0 || e.StreakBonus < 0 || e.MaxStreakBonus < 0 {
		errs = append(errs, errors.New("economy amounts must not be negative"))
	}
	if e.MinBet <= 0 || e.MaxBet < e.MinBet {
		errs = append(errs, fmt.Errorf("invalid bet range %d-%d", e.MinBet, e.MaxBet))
	}
	if e.DailyCooldown <= 0 || e.StreakWindow < e.DailyCooldown {
		errs = append(errs, errors.New("STREAK_WINDOW must be at least DAILY_COOLDOWN"))
	}
	if c.CleanupDays < 0 {
		errs = append(errs, errors.New("CLEANUP_INACTIVE_DAYS must not be negative"))
	}
	if c.Minecraft.Host != "" && (c.Minecraft.Port <= 0 || c.Minecraft.Port > 65535) {
		errs = append(errs, fmt.Errorf("invalid RCON_PORT %d", c.Minecraft.Port))
	}
	return errors.Join(errs...)
}

// Owners lists OWNER_ID followed by ADDITIONAL_OWNER_IDS.
func (c Config) Owners() []string {
	var ids []string
	if c.OwnerID != "" {
		ids = append(ids, c.OwnerID)
	}
	for _, id := range c.AdditionalOwners {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c Config) Rules() ledger.Rules {
	e := c.Economy
	return ledger.Rules{
		StartingBalance: e.StartingBalance,
		DailyReward:     e.DailyReward,
		StreakBonus:     e.StreakBonus,
		MaxStreakBonus:  e.MaxStreakBonus,
		DailyCooldown:   e.DailyCooldown,
		StreakWindow:    e.StreakWindow,
		MinBet:          e.MinBet,
		MaxBet:          e.MaxBet,
	}
}

func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:     c.Store.Backend,
		DataDir:     c.Store.DataDir,
		DatabaseURL: c.Store.DatabaseURL,
		RedisURL:    c.Store.RedisURL,
		RedisPrefix: c.Store.RedisPrefix,
		Autosave:    c.Store.Autosave,
	}
}

// BugReportPath defaults to bug_reports.json inside DATA_DIR.
func (c Config) BugReportPath() string {
	if c.BugReportFile != "" {
		return c.BugReportFile
	}
	return filepath.Join(c.Store.DataDir, "bug_reports.json")
}

// RCONAddress is host:port, or "" when the Minecraft bridge is off.
func (c Config) RCONAddress() string {
	if c.Minecraft.Host == "" || !c.Features.Minecraft {
		return ""
	}
	return net.JoinHostPort(c.Minecraft.Host, strconv.Itoa(c.Minecraft.Port))
}

// Enabled looks a feature up by name. Unknown names are always on.
func (f FeatureConfig) Enabled(name string) bool {
	switch name {
	case "economy":
		return f.Economy
	case "games":
		return f.Games
	case "voice":
		return f.Voice
	case "admin":
		return f.Admin
	case "minecraft":
		return f.Minecraft
	case "bugs":
		return f.BugReports
	}
	return true
}
