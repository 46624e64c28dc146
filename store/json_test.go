package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJSONLoadsLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	legacy := `{
  "players": {"111": 42, "222": -5, "333": 10},
  "last_daily": {"111": "2024-01-02T15:04:05.123456", "333": "2999-01-01T00:00:00"},
  "streaks": {"111": 4, "333": -1}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenJSON(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	rec, err := s.Get(ctx, "111")
	if err != nil {
		t.Fatalf("get 111: %v", err)
	}
	if rec.Strawberries != 42 || rec.Streak != 4 || rec.LastDaily.IsZero() {
		t.Fatalf("unexpected legacy record %+v", rec)
	}
	if _, err := s.Get(ctx, "222"); err != ErrNotFound {
		t.Fatalf("negative balance should be skipped, got %v", err)
	}
	rec, _ = s.Get(ctx, "333")
	if !rec.LastDaily.IsZero() || rec.Streak != 0 {
		t.Fatalf("future timestamp and negative streak should be dropped, got %+v", rec)
	}
}

func TestJSONFallsBackToBackupWhenCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DataFileName)
	backup := filepath.Join(dir, "strawberry_data.backup.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(backup, []byte(`{"users":{"9":{"strawberries":99}}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenJSON(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	rec, err := s.Get(context.Background(), "9")
	if err != nil || rec.Strawberries != 99 {
		t.Fatalf("expected backup record, got %+v (%v)", rec, err)
	}
}

func TestJSONCorruptWithoutBackupFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenJSON(path, 0); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestJSONAutosaveFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	s, err := OpenJSON(path, time.Hour)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = s.Update(context.Background(), "1", func(r *Record, _ bool) error {
		r.Strawberries = 12
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file before flush, stat err = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenJSON(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	rec, err := reopened.Get(context.Background(), "1")
	if err != nil || rec.Strawberries != 12 {
		t.Fatalf("expected persisted balance 12, got %+v (%v)", rec, err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "strawberry_data.backup.json")); !os.IsNotExist(err) {
		t.Fatalf("backup should be removed after a good save, stat err = %v", err)
	}
}

func TestJSONFailedSaveRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)
	s, err := OpenJSON(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	old := time.Now().Add(-90 * 24 * time.Hour)
	for id, rec := range map[string]Record{
		"alice": {Strawberries: 100},
		"idle":  {Strawberries: 5, LastDaily: old},
	} {
		rec := rec
		if _, err := s.Update(ctx, id, func(r *Record, _ bool) error { *r = rec; return nil }); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		id   string
		want bool
	}{
		{"alice", true},
		{"bob", false},
	}
	for _, tt := range tests {
		_, err := s.Update(ctx, tt.id, func(r *Record, _ bool) error {
			r.Strawberries = 1
			return nil
		})
		if err == nil {
			t.Fatalf("%s: expected save error", tt.id)
		}
		rec, err := s.Get(ctx, tt.id)
		if tt.want && (err != nil || rec.Strawberries != 100) {
			t.Fatalf("%s: expected previous record, got %+v (%v)", tt.id, rec, err)
		}
		if !tt.want && err != ErrNotFound {
			t.Fatalf("%s: new record should be dropped, got %v", tt.id, err)
		}
	}
	if removed, err := s.Prune(ctx, time.Now(), 10); err == nil || len(removed) != 0 {
		t.Fatalf("expected failed prune, got %v (%v)", removed, err)
	}
	if _, err := s.Get(ctx, "idle"); err != nil {
		t.Fatalf("pruned record should be restored: %v", err)
	}

	if err := os.Remove(path + ".tmp"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := OpenJSON(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if n, _ := reopened.Count(ctx); n != 2 {
		t.Fatalf("expected 2 records on disk, got %d", n)
	}
	if rec, _ := reopened.Get(ctx, "alice"); rec.Strawberries != 100 {
		t.Fatalf("alice should persist with 100, got %d", rec.Strawberries)
	}
}
