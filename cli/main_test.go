package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StrawberryBot/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, dir string, recs ...store.Record) {
	t.Helper()
	st, err := store.OpenJSON(filepath.Join(dir, store.DataFileName), 0)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	for _, rec := range recs {
		rec := rec
		if _, err := st.Update(context.Background(), rec.UserID, func(r *store.Record, _ bool) error {
			*r = rec
			return nil
		}); err != nil {
			t.Fatalf("seed %s: %v", rec.UserID, err)
		}
	}
}

func TestSetGiveBalance(t *testing.T) {
	dir := t.TempDir()
	flags := []string{"--backend", "json", "--data-dir", dir}

	if out, err := run(t, append(flags, "set", "42", "100")...); err != nil || !strings.Contains(out, "🍓 100") {
		t.Fatalf("set: %v %q", err, out)
	}
	if out, err := run(t, append(flags, "take", "42", "30")...); err != nil || !strings.Contains(out, "🍓 70") {
		t.Fatalf("take: %v %q", err, out)
	}
	if _, err := run(t, append(flags, "take", "42", "500")...); err == nil {
		t.Fatal("taking more than the balance should fail")
	}
	if _, err := run(t, append(flags, "give", "42", "0")...); err == nil {
		t.Fatal("giving nothing should fail")
	}
	if _, err := run(t, append(flags, "set", "42", "lots")...); err == nil {
		t.Fatal("invalid amount should fail")
	}

	out, err := run(t, append(flags, "balance", "42")...)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !strings.Contains(out, "Balance: 🍓 70") || !strings.Contains(out, "Rank: #1") {
		t.Fatalf("unexpected balance output %q", out)
	}
}

func TestLeaderboard(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir,
		store.Record{UserID: "a", Strawberries: 5},
		store.Record{UserID: "b", Strawberries: 50},
		store.Record{UserID: "c", Strawberries: 20},
	)
	out, err := run(t, "--backend", "json", "--data-dir", dir, "top", "-n", "2")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "b") || !strings.Contains(lines[2], "c") {
		t.Fatalf("unexpected leaderboard %q", out)
	}

	out, err = run(t, "--backend", "json", "--data-dir", t.TempDir(), "leaderboard")
	if err != nil || !strings.Contains(out, "No players yet.") {
		t.Fatalf("empty leaderboard: %v %q", err, out)
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-60 * 24 * time.Hour)
	seed(t, dir,
		store.Record{UserID: "idle", Strawberries: 10, LastDaily: old},
		store.Record{UserID: "rich", Strawberries: 500, LastDaily: old},
		store.Record{UserID: "fresh", Strawberries: 10, LastDaily: time.Now()},
		store.Record{UserID: "never", Strawberries: 10},
	)
	flags := []string{"--backend", "json", "--data-dir", dir, "cleanup", "--days", "30"}

	out, err := run(t, append(flags, "--dry-run")...)
	if err != nil || !strings.Contains(out, "Would remove 1 inactive users") || !strings.Contains(out, "idle") {
		t.Fatalf("dry run: %v %q", err, out)
	}
	out, err = run(t, flags...)
	if err != nil || !strings.Contains(out, "Removed 1 inactive users") {
		t.Fatalf("cleanup: %v %q", err, out)
	}
	out, _ = run(t, "--backend", "json", "--data-dir", dir, "cleanup", "--dry-run")
	if !strings.Contains(out, "Would remove 0") {
		t.Fatalf("second pass should find nothing, got %q", out)
	}
	if _, err := run(t, "--backend", "json", "--data-dir", dir, "cleanup", "--days", "0"); err == nil {
		t.Fatal("zero days should be rejected")
	}
}

func TestMigrateToSQLite(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	seed(t, src, store.Record{UserID: "a", Strawberries: 12, Streak: 3}, store.Record{UserID: "b", Strawberries: 7})

	out, err := run(t, "--backend", "json", "--data-dir", src, "migrate", "--to-backend", "sqlite", "--to-data-dir", dst)
	if err != nil || !strings.Contains(out, "Migrated 2 users from json to sqlite") {
		t.Fatalf("migrate: %v %q", err, out)
	}

	out, err = run(t, "--backend", "sqlite", "--data-dir", dst, "balance", "a")
	if err != nil || !strings.Contains(out, "Balance: 🍓 12") || !strings.Contains(out, "Daily streak: 3") {
		t.Fatalf("balance after migrate: %v %q", err, out)
	}

	if _, err := run(t, "--backend", "json", "--data-dir", src, "migrate", "--to-backend", "json", "--to-data-dir", src); err == nil {
		t.Fatal("migrating onto the source should fail")
	}
}

func TestList(t *testing.T) {
	out, err := run(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"📦 Economy [economy]", "!roulette (bet, spin)", "/mc", "📦 Help [always on]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if _, err := run(t, "list", "-f", "Nope"); err == nil {
		t.Fatal("unknown module should fail")
	}
}
