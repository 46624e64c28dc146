package voicechat

import (
	"net/http"
	"strings"
	"testing"

	"StrawberryBot/bot"

	"github.com/bwmarrin/discordgo"
)

type fakeLocator map[string]string

func (f fakeLocator) VoiceChannel(_, userID string) string { return f[userID] }

type fakeMover struct {
	moved map[string]string
	err   error
}

func (m *fakeMover) GuildMemberMove(_, userID string, channelID *string, _ ...discordgo.RequestOption) error {
	if m.err != nil {
		return m.err
	}
	m.moved[userID] = *channelID
	return nil
}

func TestCheckFollow(t *testing.T) {
	me := &discordgo.User{ID: "1"}
	tests := []struct {
		target *discordgo.User
		want   string
	}{
		{nil, "not in this server"},
		{&discordgo.User{ID: "2", Bot: true}, "bots"},
		{me, "yourself"},
		{&discordgo.User{ID: "2"}, ""},
	}
	for _, tt := range tests {
		got := checkFollow(me, tt.target)
		if tt.want == "" && got != "" || !strings.Contains(got, tt.want) {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestFollowMovesImmediately(t *testing.T) {
	b := bot.New(bot.Config{}, nil)
	me := &discordgo.User{ID: "1"}
	target := &discordgo.User{ID: "2"}
	m := &fakeMover{moved: make(map[string]string)}

	embed, msg := follow(b, m, fakeLocator{"1": "lobby", "2": "games"}, "g", me, target)
	if msg != "" {
		t.Fatalf("follow failed: %s", msg)
	}
	if embed.Description != "Now following <@2>" {
		t.Fatalf("unexpected description %q", embed.Description)
	}
	if m.moved["1"] != "games" {
		t.Fatalf("expected follower moved to games, got %v", m.moved)
	}

	embed, msg = unfollow(b, "1")
	if msg != "" || embed.Description != "No longer following <@2>" {
		t.Fatalf("unexpected unfollow %q %v", msg, embed)
	}
	if _, msg := unfollow(b, "1"); !strings.Contains(msg, "not following") {
		t.Fatalf("second unfollow should fail, got %q", msg)
	}
}

func TestFollowWithoutMovePermission(t *testing.T) {
	b := bot.New(bot.Config{}, nil)
	m := &fakeMover{err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}}

	_, msg := follow(b, m, fakeLocator{"1": "lobby", "2": "games"}, "g", &discordgo.User{ID: "1"}, &discordgo.User{ID: "2"})
	if !strings.Contains(msg, "permission to move") {
		t.Fatalf("expected permission error, got %q", msg)
	}
	if b.Follows.Len() != 0 {
		t.Fatal("relation should be dropped")
	}
}
