// Package ledger implements the strawberry economy on top of a store.Store:
// starting balances, daily claims with streaks, transfers, bets and the
// cached leaderboard.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StrawberryBot/store"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("not enough strawberries")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrBetOutOfRange     = errors.New("bet outside allowed range")
)

// CooldownError is returned when a daily claim is attempted too early.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("daily already claimed, next claim in %s", e.Remaining.Round(time.Second))
}

// Rules holds the tunable economy constants.
type Rules struct {
	StartingBalance int64
	DailyReward     int64
	StreakBonus     int64
	MaxStreakBonus  int64
	DailyCooldown   time.Duration
	StreakWindow    time.Duration
	MinBet          int64
	MaxBet          int64
}

func DefaultRules() Rules {
	return Rules{
		StartingBalance: 10,
		DailyReward:     5,
		StreakBonus:     2,
		MaxStreakBonus:  10,
		DailyCooldown:   24 * time.Hour,
		StreakWindow:    48 * time.Hour,
		MinBet:          1,
		MaxBet:          1000,
	}
}

// Reward is the daily payout for the given (already incremented) streak.
func (r Rules) Reward(streak int) int64 {
	if streak < 1 {
		streak = 1
	}
	bonus := int64(streak-1) * r.StreakBonus
	if bonus > r.MaxStreakBonus {
		bonus = r.MaxStreakBonus
	}
	return r.DailyReward + bonus
}

const (
	LeaderboardSize = 100
	leaderboardTTL  = 5 * time.Minute
)

type Ledger struct {
	store store.Store
	rules Rules
	now   func() time.Time

	mu      sync.Mutex
	board   []store.Record
	boardAt time.Time
	gen     uint64 // bumped by every invalidation
}

func New(s store.Store, rules Rules) *Ledger {
	return &Ledger{store: s, rules: rules, now: time.Now}
}

// SetClock overrides the time source.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Ledger) Rules() Rules {
	return l.rules
}

func (l *Ledger) Store() store.Store {
	return l.store
}

// update wraps store.Update, seeding new records with the starting balance
// and dropping the leaderboard cache on success.
func (l *Ledger) update(ctx context.Context, userID string, fn func(rec *store.Record) error) (store.Record, error) {
	rec, err := l.store.Update(ctx, userID, func(rec *store.Record, exists bool) error {
		if !exists {
			rec.Strawberries = l.rules.StartingBalance
		}
		if err := fn(rec); err != nil {
			return err
		}
		if rec.Strawberries < 0 {
			return ErrInsufficientFunds
		}
		return nil
	})
	if err == nil {
		l.invalidate()
	}
	return rec, err
}

func (l *Ledger) invalidate() {
	l.mu.Lock()
	l.board = nil
	l.gen++
	l.mu.Unlock()
}

// Account returns the user's record, creating it with the starting balance
// on first interaction.
func (l *Ledger) Account(ctx context.Context, userID string) (store.Record, error) {
	rec, err := l.store.Get(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.Record{}, err
	}
	return l.update(ctx, userID, func(*store.Record) error { return nil })
}

func (l *Ledger) Deposit(ctx context.Context, userID string, amount int64) (store.Record, error) {
	if amount <= 0 {
		return store.Record{}, ErrInvalidAmount
	}
	return l.update(ctx, userID, func(rec *store.Record) error {
		rec.Strawberries += amount
		return nil
	})
}

func (l *Ledger) Withdraw(ctx context.Context, userID string, amount int64) (store.Record, error) {
	if amount <= 0 {
		return store.Record{}, ErrInvalidAmount
	}
	return l.update(ctx, userID, func(rec *store.Record) error {
		if rec.Strawberries < amount {
			return ErrInsufficientFunds
		}
		rec.Strawberries -= amount
		return nil
	})
}

func (l *Ledger) SetBalance(ctx context.Context, userID string, amount int64) (store.Record, error) {
	if amount < 0 {
		return store.Record{}, ErrInvalidAmount
	}
	return l.update(ctx, userID, func(rec *store.Record) error {
		rec.Strawberries = amount
		return nil
	})
}

// Transfer moves amount from one user to another. The recipient is only
// credited once the debit has succeeded; a failed credit refunds the sender.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount int64) (from, to store.Record, err error) {
	if amount <= 0 {
		return from, to, ErrInvalidAmount
	}
	if fromID == toID {
		return from, to, ErrSelfTransfer
	}

	from, err = l.Withdraw(ctx, fromID, amount)
	if err != nil {
		return from, to, err
	}
	to, err = l.Deposit(ctx, toID, amount)
	if err != nil {
		if refunded, rerr := l.Deposit(ctx, fromID, amount); rerr == nil {
			from = refunded
		} else {
			err = fmt.Errorf("%w (refund of %d to %s failed: %v)", err, amount, fromID, rerr)
		}
		return from, to, err
	}
	return from, to, nil
}

// DailyResult describes a successful claim.
type DailyResult struct {
	Reward  int64
	Streak  int
	Balance int64
}

// CanClaimDaily reports whether a claim would succeed now and, if not, how long is left.
func (l *Ledger) CanClaimDaily(ctx context.Context, userID string) (bool, time.Duration, error) {
	rec, err := l.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	remaining := l.dailyRemaining(rec, l.now())
	return remaining <= 0, remaining, nil
}

func (l *Ledger) dailyRemaining(rec store.Record, now time.Time) time.Duration {
	if rec.LastDaily.IsZero() {
		return 0
	}
	return l.rules.DailyCooldown - now.Sub(rec.LastDaily)
}

// ClaimDaily grants the daily reward at most once per rolling cooldown window.
// The streak grows on consecutive claims and restarts after StreakWindow.
func (l *Ledger) ClaimDaily(ctx context.Context, userID string) (DailyResult, error) {
	var res DailyResult
	now := l.now()
	rec, err := l.update(ctx, userID, func(rec *store.Record) error {
		if remaining := l.dailyRemaining(*rec, now); remaining > 0 {
			return &CooldownError{Remaining: remaining}
		}
		if rec.LastDaily.IsZero() || now.Sub(rec.LastDaily) > l.rules.StreakWindow {
			rec.Streak = 0
		}
		rec.Streak++
		res.Reward = l.rules.Reward(rec.Streak)
		rec.Strawberries += res.Reward
		rec.LastDaily = now
		return nil
	})
	if err != nil {
		return DailyResult{}, err
	}
	res.Streak = rec.Streak
	res.Balance = rec.Strawberries
	return res, nil
}

// CheckBet validates a wager against the configured limits.
func (l *Ledger) CheckBet(bet int64) error {
	if bet < l.rules.MinBet || bet > l.rules.MaxBet {
		return ErrBetOutOfRange
	}
	return nil
}

// Settle applies one game outcome atomically: on a win winnings are added,
// on a loss the bet is removed. The bet must be covered by the balance.
func (l *Ledger) Settle(ctx context.Context, userID string, bet int64, won bool, winnings int64) (store.Record, error) {
	if err := l.CheckBet(bet); err != nil {
		return store.Record{}, err
	}
	return l.update(ctx, userID, func(rec *store.Record) error {
		if rec.Strawberries < bet {
			return ErrInsufficientFunds
		}
		rec.GamesPlayed++
		if won {
			rec.GamesWon++
			rec.Strawberries += winnings
		} else {
			rec.Strawberries -= bet
		}
		return nil
	})
}

// Leaderboard returns up to limit records, served from a short-lived cache.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]store.Record, error) {
	if limit <= 0 || limit > LeaderboardSize {
		limit = LeaderboardSize
	}

	l.mu.Lock()
	if l.board != nil && l.now().Sub(l.boardAt) < leaderboardTTL {
		board := l.board
		l.mu.Unlock()
		return clip(board, limit), nil
	}
	gen := l.gen
	l.mu.Unlock()

	board, err := l.store.Top(ctx, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	if board == nil {
		board = []store.Record{}
	}

	// A mutation during Top may have made board stale; serve it but don't cache it.
	l.mu.Lock()
	if l.gen == gen {
		l.board = board
		l.boardAt = l.now()
	}
	l.mu.Unlock()
	return clip(board, limit), nil
}

func clip(recs []store.Record, limit int) []store.Record {
	if len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]store.Record, len(recs))
	copy(out, recs)
	return out
}

func (l *Ledger) Rank(ctx context.Context, userID string) (int, error) {
	return l.store.Rank(ctx, userID)
}

func (l *Ledger) Players(ctx context.Context) (int, error) {
	return l.store.Count(ctx)
}

// Cleanup removes users inactive for more than days whose balance has not
// grown past the starting amount.
func (l *Ledger) Cleanup(ctx context.Context, days int) ([]string, error) {
	if days <= 0 {
		return nil, ErrInvalidAmount
	}
	cutoff := l.now().Add(-time.Duration(days) * 24 * time.Hour)
	removed, err := l.store.Prune(ctx, cutoff, l.rules.StartingBalance)
	if len(removed) > 0 {
		l.invalidate()
	}
	return removed, err
}
