package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type opener func(t *testing.T) Store

func backends() map[string]opener {
	return map[string]opener{
		"json": func(t *testing.T) Store {
			s, err := OpenJSON(filepath.Join(t.TempDir(), DataFileName), 0)
			if err != nil {
				t.Fatalf("open json: %v", err)
			}
			return s
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			return NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQL(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func put(t *testing.T, s Store, id string, balance int64, last time.Time) {
	t.Helper()
	_, err := s.Update(context.Background(), id, func(r *Record, _ bool) error {
		r.Strawberries = balance
		r.LastDaily = last
		return nil
	})
	if err != nil {
		t.Fatalf("put %s: %v", id, err)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), "404")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateCreatesThenMutates(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s Store) {
		claimed := time.Unix(1_700_000_000, 0).UTC()

		rec, err := s.Update(ctx, "1", func(r *Record, exists bool) error {
			if exists {
				t.Fatal("expected new record")
			}
			r.Strawberries = 10
			return nil
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if rec.UserID != "1" || rec.Strawberries != 10 {
			t.Fatalf("unexpected record %+v", rec)
		}

		_, err = s.Update(ctx, "1", func(r *Record, exists bool) error {
			if !exists {
				t.Fatal("expected existing record")
			}
			r.Strawberries += 5
			r.LastDaily = claimed
			r.Streak = 3
			r.GamesPlayed = 2
			r.GamesWon = 1
			return nil
		})
		if err != nil {
			t.Fatalf("mutate: %v", err)
		}

		got, err := s.Get(ctx, "1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		want := Record{UserID: "1", Strawberries: 15, LastDaily: claimed, Streak: 3, GamesPlayed: 2, GamesWon: 1}
		if !got.LastDaily.Equal(want.LastDaily) {
			t.Fatalf("last daily: expected %v, got %v", want.LastDaily, got.LastDaily)
		}
		got.LastDaily = want.LastDaily
		if got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	})
}

func TestUpdateErrorLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	forEachBackend(t, func(t *testing.T, s Store) {
		put(t, s, "1", 7, time.Time{})

		_, err := s.Update(ctx, "1", func(r *Record, _ bool) error {
			r.Strawberries = 0
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected callback error, got %v", err)
		}
		got, _ := s.Get(ctx, "1")
		if got.Strawberries != 7 {
			t.Fatalf("expected balance 7, got %d", got.Strawberries)
		}

		_, err = s.Update(ctx, "2", func(*Record, bool) error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected callback error, got %v", err)
		}
		if _, err := s.Get(ctx, "2"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("aborted create must not persist, got %v", err)
		}
	})
}

func TestTopRankAndCount(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s Store) {
		put(t, s, "c", 50, time.Time{})
		put(t, s, "a", 100, time.Time{})
		put(t, s, "b", 50, time.Time{})
		put(t, s, "d", 5, time.Time{})

		top, err := s.Top(ctx, 3)
		if err != nil {
			t.Fatalf("top: %v", err)
		}
		var ids []string
		for _, r := range top {
			ids = append(ids, r.UserID)
		}
		if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
			t.Fatalf("unexpected order %v", ids)
		}

		cases := map[string]int{"a": 1, "b": 2, "c": 2, "d": 4, "missing": 0}
		for id, want := range cases {
			got, err := s.Rank(ctx, id)
			if err != nil {
				t.Fatalf("rank %s: %v", id, err)
			}
			if got != want {
				t.Fatalf("rank %s: expected %d, got %d", id, want, got)
			}
		}

		n, err := s.Count(ctx)
		if err != nil || n != 4 {
			t.Fatalf("expected count 4, got %d (%v)", n, err)
		}
	})
}

func TestPruneRemovesOnlyInactivePoorUsers(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0).UTC()
	cutoff := now.Add(-30 * 24 * time.Hour)
	old := cutoff.Add(-time.Hour)

	forEachBackend(t, func(t *testing.T, s Store) {
		put(t, s, "stale", 10, old)
		put(t, s, "rich", 500, old)
		put(t, s, "active", 10, now)
		put(t, s, "never", 10, time.Time{})

		removed, err := s.Prune(ctx, cutoff, 10)
		if err != nil {
			t.Fatalf("prune: %v", err)
		}
		if len(removed) != 1 || removed[0] != "stale" {
			t.Fatalf("expected only stale removed, got %v", removed)
		}
		if _, err := s.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("stale still present: %v", err)
		}
		n, _ := s.Count(ctx)
		if n != 3 {
			t.Fatalf("expected 3 users left, got %d", n)
		}
	})
}

func TestConcurrentUpdatesAreAtomic(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, s Store) {
		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, "1", func(r *Record, _ bool) error {
					r.Strawberries++
					return nil
				})
				if err != nil {
					t.Errorf("update: %v", err)
				}
			}()
		}
		wg.Wait()

		got, _ := s.Get(ctx, "1")
		if got.Strawberries != workers {
			t.Fatalf("expected %d, got %d", workers, got.Strawberries)
		}
	})
}

func TestCopyBetweenBackends(t *testing.T) {
	ctx := context.Background()
	src := backends()["json"](t)
	dst := backends()["sqlite"](t)
	defer src.Close()
	defer dst.Close()

	put(t, src, "1", 11, time.Time{})
	put(t, src, "2", 22, time.Unix(1_700_000_000, 0))

	n, err := Copy(ctx, dst, src)
	if err != nil || n != 2 {
		t.Fatalf("copy: n=%d err=%v", n, err)
	}
	all, _ := dst.All(ctx)
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	if len(all) != 2 || all[0].Strawberries != 11 || all[1].Strawberries != 22 {
		t.Fatalf("unexpected copy result %+v", all)
	}
}

func TestResolveBackend(t *testing.T) {
	cases := []struct {
		opts Options
		want string
	}{
		{Options{}, BackendJSON},
		{Options{RedisURL: "redis://localhost:6379/0"}, BackendRedis},
		{Options{DatabaseURL: "postgres://u:p@localhost/db"}, BackendPostgres},
		{Options{DatabaseURL: "sqlite://data/bot.db"}, BackendSQLite},
		{Options{Backend: "JSON", DatabaseURL: "postgres://x"}, BackendJSON},
		{Options{Backend: "pg"}, BackendPostgres},
	}
	for _, tc := range cases {
		if got := tc.opts.ResolveBackend(); got != tc.want {
			t.Fatalf("%+v: expected %s, got %s", tc.opts, tc.want, got)
		}
	}
}
