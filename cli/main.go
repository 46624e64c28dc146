package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"StrawberryBot/bot"
	"StrawberryBot/ledger"
	"StrawberryBot/store"
	"StrawberryBot/utils"
)

// app holds what every subcommand needs once flags and environment are read.
type app struct {
	opts  store.Options
	rules ledger.Rules

	backend     string
	dataDir     string
	databaseURL string
	redisURL    string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "strawberryctl",
		Short: "StrawberryBot CLI - inspect and manage strawberry balances",
		Long: `An operator tool for StrawberryBot. It reads the same environment
(and .env file) as the bot, so it talks to the same balance store.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.backend, "backend", "", "Store backend: json, redis, postgres or sqlite (default from STORE_BACKEND)")
	flags.StringVar(&a.dataDir, "data-dir", "", "Data directory for the json and sqlite backends")
	flags.StringVar(&a.databaseURL, "database-url", "", "SQL connection URL")
	flags.StringVar(&a.redisURL, "redis-url", "", "Redis connection URL")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level")

	rootCmd.AddCommand(
		newBalanceCmd(a),
		newLeaderboardCmd(a),
		newSetCmd(a),
		newGiveCmd(a),
		newTakeCmd(a),
		newCleanupCmd(a),
		newMigrateCmd(a),
		newListCmd(),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	if err := utils.InitLogger(a.logLevel, ""); err != nil {
		return err
	}
	_ = godotenv.Load()

	var env struct {
		Store   bot.StoreConfig
		Economy bot.EconomyConfig
	}
	if err := bot.ParseEnv(&env); err != nil {
		return err
	}
	if a.backend != "" {
		env.Store.Backend = a.backend
	}
	if a.dataDir != "" {
		env.Store.DataDir = a.dataDir
	}
	if a.databaseURL != "" {
		env.Store.DatabaseURL = a.databaseURL
	}
	if a.redisURL != "" {
		env.Store.RedisURL = a.redisURL
	}
	// Write every change straight through; the CLI exits right after.
	env.Store.Autosave = 0

	cfg := bot.Config{Store: env.Store, Economy: env.Economy}
	a.opts = cfg.StoreOptions()
	a.rules = cfg.Rules()
	return nil
}

// ledger opens the configured store. The caller closes the returned store.
func (a *app) ledger(ctx context.Context) (*ledger.Ledger, store.Store, error) {
	st, err := store.Open(ctx, a.opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return ledger.New(st, a.rules), st, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
