package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"StrawberryBot/utils"
)

func parseAmount(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return n, nil
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's balance and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, st, err := a.ledger(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := l.Account(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rank, err := l.Rank(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🍓 %s\n", rec.UserID)
			fmt.Fprintf(out, "  Balance: %s\n", utils.Berries(rec.Strawberries))
			fmt.Fprintf(out, "  Rank: #%d\n", rank)
			fmt.Fprintf(out, "  Daily streak: %d\n", rec.Streak)
			fmt.Fprintf(out, "  Games: %d played, %d won\n", rec.GamesPlayed, rec.GamesWon)
			if !rec.LastDaily.IsZero() {
				fmt.Fprintf(out, "  Last daily: %s\n", rec.LastDaily.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newLeaderboardCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"lb", "top"},
		Short:   "Print the richest users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, st, err := a.ledger(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			board, err := l.Leaderboard(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(board) == 0 {
				fmt.Fprintln(out, "No players yet.")
				return nil
			}
			fmt.Fprintln(out, "🏆 Strawberry Leaderboard")
			for n, rec := range board {
				fmt.Fprintf(out, "%3d. %-20s %s\n", n+1, rec.UserID, utils.Berries(rec.Strawberries))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of users to show")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <user-id> <amount>",
		Short: "Set a user's balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			l, st, err := a.ledger(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := l.SetBalance(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ %s now has %s\n", rec.UserID, utils.Berries(rec.Strawberries))
			return nil
		},
	}
}

func newGiveCmd(a *app) *cobra.Command {
	return adjustCmd(a, "give", "Add strawberries to a user", false)
}

func newTakeCmd(a *app) *cobra.Command {
	return adjustCmd(a, "take", "Remove strawberries from a user", true)
}

func adjustCmd(a *app, use, short string, take bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			l, st, err := a.ledger(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			adjust := l.Deposit
			if take {
				adjust = l.Withdraw
			}
			rec, err := adjust(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ %s now has %s\n", rec.UserID, utils.Berries(rec.Strawberries))
			return nil
		},
	}
}
