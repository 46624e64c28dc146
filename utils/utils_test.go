package utils

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"<@123456789>", "123456789", false},
		{"<@!123456789>", "123456789", false},
		{"123456789", "", true},
		{"<@abc>", "", true},
		{"<@&123>", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractUserID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ExtractUserID(%q) = %q, %v", tt.in, got, err)
		}
	}
	if id, err := ParseUserArg("42"); err != nil || id != "42" {
		t.Fatalf("ParseUserArg(42) = %q, %v", id, err)
	}
}

func TestParseAmount(t *testing.T) {
	if n, err := ParseAmount(" 15 "); err != nil || n != 15 {
		t.Fatalf("unexpected %d (%v)", n, err)
	}
	for _, bad := range []string{"0", "-3", "ten", ""} {
		if _, err := ParseAmount(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		3*time.Hour + 12*time.Minute + 5*time.Second: "3h 12m",
		90 * time.Second:       "1m 30s",
		45 * time.Second:       "45s",
		200 * time.Millisecond: "1s",
	}
	for d, want := range tests {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewRateLimiter(2)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if ok, _ := rl.AllowAt("u1", "daily", now); !ok {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	ok, wait := rl.AllowAt("u1", "daily", now)
	if ok || wait < 29*time.Second || wait > 30*time.Second {
		t.Fatalf("expected ~30s wait, got %v %s", ok, wait)
	}
	if ok, _ := rl.AllowAt("u2", "daily", now); !ok {
		t.Fatal("other users are not affected")
	}
	if ok, _ := rl.AllowAt("u1", "daily", now.Add(31*time.Second)); !ok {
		t.Fatal("token should have refilled")
	}
}

func TestRateLimiterCooldown(t *testing.T) {
	rl := NewRateLimiter(60)
	rl.SetCooldown("roulette", 30*time.Second)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if ok, _ := rl.AllowAt("u1", "roulette", now); !ok {
		t.Fatal("first spin should be allowed")
	}
	ok, wait := rl.AllowAt("u1", "roulette", now.Add(10*time.Second))
	if ok || wait < 19*time.Second || wait > 20*time.Second {
		t.Fatalf("expected ~20s cooldown, got %v %s", ok, wait)
	}
	if ok, _ := rl.AllowAt("u1", "strawberries", now.Add(10*time.Second)); !ok {
		t.Fatal("cooldown is per command")
	}
	if ok, _ := rl.AllowAt("u1", "roulette", now.Add(31*time.Second)); !ok {
		t.Fatal("cooldown should have expired")
	}

	rl.Sweep(now.Add(time.Hour))
	if len(rl.users) != 0 || len(rl.commands) != 0 {
		t.Fatalf("sweep left %d users and %d commands", len(rl.users), len(rl.commands))
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1234: "1,234", -1234567: "-1,234,567"}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
	if got := Berries(1500); got != "🍓 1,500" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestIsPermissionError(t *testing.T) {
	if IsPermissionError(errors.New("boom")) {
		t.Fatal("plain error is not a permission error")
	}
	if !IsPermissionError(&discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}) {
		t.Fatal("403 should be a permission error")
	}
	coded := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
	}
	if !IsPermissionError(coded) {
		t.Fatal("missing permissions code should be a permission error")
	}
}

func TestTitle(t *testing.T) {
	if got := Title("investigating"); got != "Investigating" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Title("roulette wheel"); got != "Roulette Wheel" {
		t.Fatalf("unexpected %q", got)
	}
}

type recordingSender struct {
	channelID string
	embed     *discordgo.MessageEmbed
	err       error
}

func (r *recordingSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.channelID, r.embed = channelID, embed
	return &discordgo.Message{}, r.err
}

func TestSendError(t *testing.T) {
	rs := &recordingSender{}
	SendError(rs, "chan1", GenericError)
	if rs.channelID != "chan1" {
		t.Fatalf("sent to %q", rs.channelID)
	}
	if rs.embed == nil || rs.embed.Title != "❌ Error" || rs.embed.Description != GenericError {
		t.Fatalf("unexpected embed %+v", rs.embed)
	}
	if rs.embed.Color != ColorError {
		t.Fatalf("color = %x", rs.embed.Color)
	}

	// a failed send is logged, not propagated
	SendError(&recordingSender{err: errors.New("boom")}, "chan1", "x")
}
