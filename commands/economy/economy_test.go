package economy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StrawberryBot/bot"
	"StrawberryBot/store"

	"github.com/bwmarrin/discordgo"
)

func newTestBot(t *testing.T) *bot.Bot {
	t.Helper()
	st, err := store.OpenJSON(filepath.Join(t.TempDir(), "data.json"), 0)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	var cfg bot.Config
	cfg.RateLimit = 60
	cfg.Economy.StartingBalance = 10
	cfg.Economy.DailyReward = 5
	cfg.Economy.StreakBonus = 2
	cfg.Economy.MaxStreakBonus = 10
	cfg.Economy.DailyCooldown = 24 * time.Hour
	cfg.Economy.StreakWindow = 48 * time.Hour
	cfg.Economy.MinBet = 1
	cfg.Economy.MaxBet = 1000
	return bot.New(cfg, st)
}

func TestTransferValidation(t *testing.T) {
	b := newTestBot(t)
	alice := &discordgo.User{ID: "1", Username: "alice"}
	bob := &discordgo.User{ID: "2", Username: "bob"}
	robot := &discordgo.User{ID: "3", Bot: true}

	tests := []struct {
		name   string
		to     *discordgo.User
		amount int64
		want   string
	}{
		{"negative", bob, -5, "positive"},
		{"bot", robot, 5, "bots"},
		{"self", alice, 5, "yourself"},
		{"too much", bob, 500, "Insufficient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed, msg := transfer(b, alice, tt.to, tt.amount)
			if embed != nil || !strings.Contains(msg, tt.want) {
				t.Fatalf("expected %q error, got %q", tt.want, msg)
			}
		})
	}

	embed, msg := transfer(b, alice, bob, 4)
	if embed == nil {
		t.Fatalf("transfer failed: %s", msg)
	}
	if embed.Fields[0].Value != "🍓 6" || embed.Fields[1].Value != "🍓 14" {
		t.Fatalf("unexpected balances %s / %s", embed.Fields[0].Value, embed.Fields[1].Value)
	}
}

func TestClaimTwice(t *testing.T) {
	b := newTestBot(t)
	embed, msg := claim(b, "1")
	if embed == nil {
		t.Fatalf("first claim failed: %s", msg)
	}
	if !strings.Contains(embed.Description, "**5**") {
		t.Fatalf("unexpected description %q", embed.Description)
	}
	if embed, msg := claim(b, "1"); embed != nil || !strings.Contains(msg, "claim again in") {
		t.Fatalf("second claim should be refused, got %q", msg)
	}
}

func TestLeaderboardEmbed(t *testing.T) {
	var board []store.Record
	for i := 0; i < 25; i++ {
		board = append(board, store.Record{UserID: fmt.Sprint(i), Strawberries: int64(1000 - i)})
	}

	embed, page, total := leaderboardEmbed(board, 9, 25)
	if page != 3 || total != 3 {
		t.Fatalf("expected clamped page 3/3, got %d/%d", page, total)
	}
	if lines := strings.Split(embed.Description, "\n"); len(lines) != 5 || !strings.HasPrefix(lines[0], "👑 **#21**") {
		t.Fatalf("unexpected last page %q", embed.Description)
	}

	embed, _, _ = leaderboardEmbed(board, 1, 25)
	if !strings.HasPrefix(embed.Description, "🥇 **#1** <@0>: 🍓 1,000") {
		t.Fatalf("unexpected first line %q", embed.Description)
	}
	if embed.Footer.Text != "Page 1/3 • Total Players: 25" {
		t.Fatalf("unexpected footer %q", embed.Footer.Text)
	}

	if embed, _, _ := leaderboardEmbed(nil, 1, 0); !strings.Contains(embed.Description, "Nobody") {
		t.Fatal("empty board should say so")
	}
}

func TestBalanceEmbed(t *testing.T) {
	b := newTestBot(t)
	if _, err := b.Ledger.ClaimDaily(context.Background(), "1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	rec, rank, err := lookupBalance(context.Background(), b, "1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	embed := balanceEmbed(b, "alice", rec, rank)
	if embed.Fields[0].Value != "🍓 15" || embed.Fields[1].Value != "#1" || embed.Fields[2].Value != "🔥 1 days" {
		t.Fatalf("unexpected fields %+v %+v %+v", embed.Fields[0], embed.Fields[1], embed.Fields[2])
	}
}
