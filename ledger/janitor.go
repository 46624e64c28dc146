package ledger

import (
	"context"
	"time"

	"StrawberryBot/utils"
)

// Janitor periodically removes inactive users.
type Janitor struct {
	ledger   *Ledger
	days     int
	interval time.Duration
}

func NewJanitor(l *Ledger, days int, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Janitor{ledger: l, days: days, interval: interval}
}

// Start blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	utils.LogComponent("economy", "Starting inactive user cleanup every %s (%d days)", j.interval, j.days)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce performs one cleanup pass and returns how many users were removed.
func (j *Janitor) RunOnce(ctx context.Context) int {
	removed, err := j.ledger.Cleanup(ctx, j.days)
	if err != nil {
		utils.LogError("Error cleaning up inactive users: %v", err)
	}
	if len(removed) > 0 {
		utils.LogComponent("economy", "Cleaned up %d inactive users", len(removed))
	}
	return len(removed)
}
