package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"StrawberryBot/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	var to store.Options
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every balance from the configured store into another backend",
		Example: `  strawberryctl migrate --to-backend sqlite --to-data-dir ./data
  strawberryctl --backend json migrate --to-backend postgres --to-database-url postgres://bot@localhost/bot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if to.ResolveBackend() == a.opts.ResolveBackend() &&
				to.DataDir == a.opts.DataDir && to.DatabaseURL == a.opts.DatabaseURL && to.RedisURL == a.opts.RedisURL {
				return fmt.Errorf("source and destination are the same store")
			}
			if to.RedisPrefix == "" {
				to.RedisPrefix = a.opts.RedisPrefix
			}

			src, err := store.Open(cmd.Context(), a.opts)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer src.Close()
			dst, err := store.Open(cmd.Context(), to)
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer dst.Close()

			n, err := store.Copy(cmd.Context(), dst, src)
			if err != nil {
				return fmt.Errorf("copied %d records before failing: %w", n, err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ Migrated %d users from %s to %s\n",
				n, a.opts.ResolveBackend(), to.ResolveBackend())
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&to.Backend, "to-backend", "", "Destination backend: json, redis, postgres or sqlite")
	flags.StringVar(&to.DataDir, "to-data-dir", "", "Destination data directory")
	flags.StringVar(&to.DatabaseURL, "to-database-url", "", "Destination SQL connection URL")
	flags.StringVar(&to.RedisURL, "to-redis-url", "", "Destination Redis connection URL")
	flags.StringVar(&to.RedisPrefix, "to-redis-prefix", "", "Destination Redis key prefix")
	cmd.MarkFlagRequired("to-backend")
	return cmd
}
