package utils

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter controls the rate of command execution. Every user gets a
// token bucket refilled at perMinute; commands with a cooldown additionally
// get a one-token bucket per user.
type RateLimiter struct {
	perMinute int
	mu        sync.Mutex
	users     map[string]*rate.Limiter
	cooldowns map[string]time.Duration
	commands  map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		perMinute: perMinute,
		users:     make(map[string]*rate.Limiter),
		cooldowns: make(map[string]time.Duration),
		commands:  make(map[string]*rate.Limiter),
	}
}

// SetCooldown sets the minimum time between two uses of command by one user.
func (rl *RateLimiter) SetCooldown(command string, d time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if d <= 0 {
		delete(rl.cooldowns, command)
		return
	}
	rl.cooldowns[command] = d
}

// Allow checks if a user is allowed to execute a command.
// When not allowed it returns how long to wait.
func (rl *RateLimiter) Allow(userID, command string) (bool, time.Duration) {
	return rl.AllowAt(userID, command, time.Now())
}

func (rl *RateLimiter) AllowAt(userID, command string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	user, ok := rl.users[userID]
	if !ok {
		user = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.perMinute)
		rl.users[userID] = user
	}
	ur := user.ReserveN(now, 1)
	if d := ur.DelayFrom(now); d > 0 {
		ur.CancelAt(now)
		return false, d
	}

	cd, ok := rl.cooldowns[command]
	if !ok {
		return true, 0
	}
	key := userID + ":" + command
	lim, ok := rl.commands[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(cd), 1)
		rl.commands[key] = lim
	}
	cr := lim.ReserveN(now, 1)
	if d := cr.DelayFrom(now); d > 0 {
		cr.CancelAt(now)
		ur.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Sweep drops buckets that have fully refilled, so idle users don't pile up.
func (rl *RateLimiter) Sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, lim := range rl.users {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(rl.users, id)
		}
	}
	for key, lim := range rl.commands {
		if lim.TokensAt(now) >= 1 {
			delete(rl.commands, key)
		}
	}
}

// StartSweeper runs Sweep every interval until stop is closed.
func (rl *RateLimiter) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			rl.Sweep(now)
		}
	}
}
