package admin

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StrawberryBot/bot"
	"StrawberryBot/store"

	"github.com/bwmarrin/discordgo"
)

// fakeChannel serves messages newest first, like the Discord API.
type fakeChannel struct {
	msgs       []*discordgo.Message
	bulk       [][]string
	single     []string
	deleteErr  error
	fetchCalls int
}

func (f *fakeChannel) ChannelMessages(_ string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.fetchCalls++
	start := 0
	if beforeID != "" {
		for idx, m := range f.msgs {
			if m.ID == beforeID {
				start = idx + 1
				break
			}
		}
	}
	end := min(start+limit, len(f.msgs))
	return f.msgs[start:end], nil
}

func (f *fakeChannel) ChannelMessagesBulkDelete(_ string, ids []string, _ ...discordgo.RequestOption) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.bulk = append(f.bulk, ids)
	return nil
}

func (f *fakeChannel) ChannelMessageDelete(_, id string, _ ...discordgo.RequestOption) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.single = append(f.single, id)
	return nil
}

func channelWith(n int, now time.Time, author func(i int) string, age func(i int) time.Duration) *fakeChannel {
	f := &fakeChannel{}
	for i := 0; i < n; i++ {
		f.msgs = append(f.msgs, &discordgo.Message{
			ID:        fmt.Sprint(1000 - i),
			Author:    &discordgo.User{ID: author(i)},
			Timestamp: now.Add(-age(i)),
		})
	}
	return f
}

func TestPurgeBulkChunks(t *testing.T) {
	now := time.Now()
	f := channelWith(250, now, func(int) string { return "u" }, func(i int) time.Duration { return time.Duration(i) * time.Minute })

	deleted, err := purge(f, "c", "", 201, "", now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 201 {
		t.Fatalf("expected 201 deleted, got %d", deleted)
	}
	if len(f.bulk) != 2 || len(f.bulk[0]) != 100 || len(f.bulk[1]) != 100 {
		t.Fatalf("expected two bulk chunks of 100, got %d", len(f.bulk))
	}
	if len(f.single) != 1 {
		t.Fatalf("a lone leftover should be deleted singly, got %v", f.single)
	}
	if f.fetchCalls != 3 {
		t.Fatalf("expected 3 fetches, got %d", f.fetchCalls)
	}
}

func TestPurgeFiltersAuthorAndAge(t *testing.T) {
	now := time.Now()
	f := channelWith(10, now,
		func(i int) string {
			if i%2 == 0 {
				return "target"
			}
			return "other"
		},
		func(i int) time.Duration {
			if i >= 6 {
				return 20 * 24 * time.Hour
			}
			return time.Hour
		})

	deleted, err := purge(f, "c", "", 10, "target", now)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	// Recent targets: 0, 2, 4. Old targets: 6, 8.
	if deleted != 5 {
		t.Fatalf("expected 5 deleted, got %d", deleted)
	}
	if len(f.bulk) != 1 || len(f.bulk[0]) != 3 {
		t.Fatalf("expected one bulk delete of 3, got %v", f.bulk)
	}
	if len(f.single) != 2 || f.single[0] != "994" || f.single[1] != "992" {
		t.Fatalf("expected old messages deleted singly, got %v", f.single)
	}
}

func TestPurgeStopsAtChannelStart(t *testing.T) {
	now := time.Now()
	f := channelWith(3, now, func(int) string { return "u" }, func(int) time.Duration { return time.Minute })
	deleted, err := purge(f, "c", "1000", 50, "", now)
	if err != nil || deleted != 2 {
		t.Fatalf("expected 2 deleted before the anchor, got %d (%v)", deleted, err)
	}
}

func TestPurgePermissionError(t *testing.T) {
	now := time.Now()
	f := channelWith(5, now, func(int) string { return "u" }, func(int) time.Duration { return time.Minute })
	f.deleteErr = &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}
	if _, err := purge(f, "c", "", 5, "", now); err == nil {
		t.Fatal("expected the delete error to surface")
	}
}

func TestPurgeResult(t *testing.T) {
	if got := purgeResult(3, ""); got != "✨ Deleted 3 messages!" {
		t.Fatalf("unexpected %q", got)
	}
	if got := purgeResult(2, "7"); got != "✨ Deleted 2 messages from <@7>!" {
		t.Fatalf("unexpected %q", got)
	}
}

func newTestBot(t *testing.T) *bot.Bot {
	t.Helper()
	st, err := store.OpenJSON(filepath.Join(t.TempDir(), "data.json"), 0)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	var cfg bot.Config
	cfg.OwnerID = "owner"
	cfg.Economy.StartingBalance = 10
	return bot.New(cfg, st)
}

func TestGiveTakeSet(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()
	user := &discordgo.User{ID: "5"}

	embed, msg := give(ctx, b, user, 15)
	if msg != "" || embed.Fields[0].Value != "🍓 25" {
		t.Fatalf("give: %q %+v", msg, embed)
	}
	if _, msg := give(ctx, b, user, 0); !strings.Contains(msg, "positive") {
		t.Fatalf("expected positive error, got %q", msg)
	}

	if _, msg := take(ctx, b, user, 30); !strings.Contains(msg, "doesn't have") {
		t.Fatalf("expected insufficient error, got %q", msg)
	}
	embed, msg = take(ctx, b, user, 20)
	if msg != "" || embed.Fields[0].Value != "🍓 5" {
		t.Fatalf("take: %q %+v", msg, embed)
	}

	if _, msg := set(ctx, b, user, -1); !strings.Contains(msg, "negative") {
		t.Fatalf("expected negative error, got %q", msg)
	}
	embed, msg = set(ctx, b, user, 1234)
	if msg != "" || !strings.Contains(embed.Description, "🍓 **1,234**") {
		t.Fatalf("set: %q %+v", msg, embed)
	}
	rec, err := b.Ledger.Account(ctx, "5")
	if err != nil || rec.Strawberries != 1234 {
		t.Fatalf("expected balance 1234, got %d (%v)", rec.Strawberries, err)
	}
}

func TestCleanupEmbed(t *testing.T) {
	if embed := cleanupEmbed(nil); embed.Description != "Removed 0 inactive users" || len(embed.Fields) != 0 {
		t.Fatalf("unexpected empty cleanup embed %+v", embed)
	}
	embed := cleanupEmbed([]string{"1", "2", "3", "4", "5", "6", "7"})
	if lines := strings.Split(embed.Fields[0].Value, "\n"); len(lines) != 5 {
		t.Fatalf("expected 5 examples, got %d", len(lines))
	}
	if embed.Footer == nil || embed.Footer.Text != "And 2 more..." {
		t.Fatalf("unexpected footer %+v", embed.Footer)
	}
}

func TestAuthorized(t *testing.T) {
	b := newTestBot(t)
	interaction := func(id string, perms int64) *discordgo.InteractionCreate {
		return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
			Member: &discordgo.Member{User: &discordgo.User{ID: id}, Permissions: perms},
		}}
	}
	if !authorized(b, interaction("owner", 0)) {
		t.Fatal("owner should be authorized")
	}
	if !authorized(b, interaction("x", discordgo.PermissionAdministrator)) {
		t.Fatal("administrator should be authorized")
	}
	if authorized(b, interaction("x", discordgo.PermissionManageMessages)) {
		t.Fatal("plain moderator should not be authorized")
	}
}
