// Package store persists per-user strawberry balances.
//
// Three backends share one interface: a JSON file, Redis and SQL
// (PostgreSQL via lib/pq or SQLite via modernc.org/sqlite). Every mutation
// goes through Update, which runs the caller's function under the backend's
// native atomicity.
package store

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned by Get when no record exists for the user.
var ErrNotFound = errors.New("store: record not found")

// Record is one user's balance state.
type Record struct {
	UserID       string    `json:"user_id"`
	Strawberries int64     `json:"strawberries"`
	LastDaily    time.Time `json:"last_daily"`
	Streak       int       `json:"streak"`
	GamesPlayed  int       `json:"games_played"`
	GamesWon     int       `json:"games_won"`
}

// UpdateFunc mutates rec in place. exists reports whether the record was
// already stored; when false rec is zero apart from UserID. Returning an error
// aborts the update and nothing is written.
type UpdateFunc func(rec *Record, exists bool) error

type Store interface {
	Get(ctx context.Context, userID string) (Record, error)
	Update(ctx context.Context, userID string, fn UpdateFunc) (Record, error)
	// Top returns up to limit records ordered by balance desc, user id asc.
	Top(ctx context.Context, limit int) ([]Record, error)
	// Rank is 1 + the number of users holding strictly more strawberries.
	// It is zero when the user has no record.
	Rank(ctx context.Context, userID string) (int, error)
	Count(ctx context.Context) (int, error)
	// Prune deletes users whose last daily claim is before cutoff and whose
	// balance is at most maxBalance. Users who never claimed are kept.
	// It returns the removed ids.
	Prune(ctx context.Context, cutoff time.Time, maxBalance int64) ([]string, error)
	// All returns every record. It is used for migrations between backends.
	All(ctx context.Context) ([]Record, error)
	Close() error
}

// SortRecords orders records the way every leaderboard does.
func SortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Strawberries != recs[j].Strawberries {
			return recs[i].Strawberries > recs[j].Strawberries
		}
		return recs[i].UserID < recs[j].UserID
	})
}

// Prunable reports whether rec qualifies for inactivity cleanup.
func Prunable(rec Record, cutoff time.Time, maxBalance int64) bool {
	return !rec.LastDaily.IsZero() && rec.LastDaily.Before(cutoff) && rec.Strawberries <= maxBalance
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(sec int64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
