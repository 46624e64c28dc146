package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"StrawberryBot/store"
)

func newCleanupCmd(a *app) *cobra.Command {
	var (
		days   int
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove inactive users still at or below the starting balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			l, st, err := a.ledger(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			var removed []string
			if dryRun {
				recs, err := st.All(cmd.Context())
				if err != nil {
					return err
				}
				cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
				for _, rec := range recs {
					if store.Prunable(rec, cutoff, a.rules.StartingBalance) {
						removed = append(removed, rec.UserID)
					}
				}
			} else if removed, err = l.Cleanup(cmd.Context(), days); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			fmt.Fprintf(out, "🧹 %s %d inactive users (inactive for %d+ days)\n", verb, len(removed), days)
			for _, id := range removed {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "Days since the last daily claim")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list the users that would be removed")
	return cmd
}
