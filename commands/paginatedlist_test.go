package commands

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestPageState(t *testing.T) {
	p := PageState{Prefix: "leaderboard", OwnerID: "42", Page: 3}
	got, err := ParsePageState(p.CustomID())
	if err != nil || got != p {
		t.Fatalf("unexpected %+v (%v)", got, err)
	}
	for _, bad := range []string{"leaderboard:42", "leaderboard:42:x", "leaderboard:42:0"} {
		if _, err := ParsePageState(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestPaging(t *testing.T) {
	if TotalPages(0, 10) != 1 || TotalPages(10, 10) != 1 || TotalPages(11, 10) != 2 {
		t.Fatal("unexpected page counts")
	}
	if ClampPage(0, 3) != 1 || ClampPage(9, 3) != 3 {
		t.Fatal("unexpected clamping")
	}
	if s, e := PageBounds(2, 10, 15); s != 10 || e != 15 {
		t.Fatalf("unexpected bounds %d-%d", s, e)
	}
}

func TestPageButtonsWrap(t *testing.T) {
	if PageButtons("lb", "1", 1, 1) != nil {
		t.Fatal("single page needs no buttons")
	}
	row := PageButtons("lb", "1", 1, 3)[0].(discordgo.ActionsRow)
	prev := row.Components[0].(discordgo.Button)
	next := row.Components[1].(discordgo.Button)
	if prev.CustomID != "lb:1:3" || next.CustomID != "lb:1:2" {
		t.Fatalf("unexpected ids %s %s", prev.CustomID, next.CustomID)
	}
}
