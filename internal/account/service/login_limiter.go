package service

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/common/clock"
	"github.com/AlibekovAA/chat-accounts/internal/common/config"
	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
)

type loginAttempts struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// LoginLimiter locks a username after repeated failed logins. Entries are
// keyed by the submitted username whether or not an account exists, so a
// lockout never tells the caller that the name is registered.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempts
	cfg      config.LockoutConfig
	clock    clock.Clock
}

func NewLoginLimiter(cfg config.LockoutConfig, c clock.Clock) *LoginLimiter {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &LoginLimiter{
		attempts: make(map[string]*loginAttempts),
		cfg:      cfg,
		clock:    c,
	}
}

func (l *LoginLimiter) enabled() bool {
	return l != nil && l.cfg.MaxFailures > 0
}

// Locked reports whether username is locked and until when.
func (l *LoginLimiter) Locked(username string) (bool, time.Time) {
	if !l.enabled() {
		return false, time.Time{}
	}

	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.attempts[username]
	if !ok || !now.Before(entry.lockedUntil) {
		return false, time.Time{}
	}
	return true, entry.lockedUntil
}

// RecordFailure counts a failed attempt and returns true when this attempt
// triggered a lockout.
func (l *LoginLimiter) RecordFailure(username string) bool {
	if !l.enabled() {
		return false
	}

	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.attempts[username]
	if !ok && !l.makeRoom(now) {
		return false
	}
	if !ok || now.Sub(entry.windowStart) > l.cfg.Window {
		entry = &loginAttempts{windowStart: now}
		l.attempts[username] = entry
	}

	entry.failures++
	if entry.failures < l.cfg.MaxFailures {
		return false
	}

	entry.lockedUntil = now.Add(l.cfg.Duration)
	entry.failures = 0
	entry.windowStart = now
	return true
}

func (l *LoginLimiter) RecordSuccess(username string) {
	if !l.enabled() {
		return
	}

	l.mu.Lock()
	delete(l.attempts, username)
	l.mu.Unlock()
}

// Sweep drops entries whose window and lock have both lapsed.
func (l *LoginLimiter) Sweep() int {
	if !l.enabled() {
		return 0
	}

	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sweepLocked(now)
}

func (l *LoginLimiter) sweepLocked(now time.Time) int {
	removed := 0
	for username, entry := range l.attempts {
		if now.Sub(entry.windowStart) > l.cfg.Window && !now.Before(entry.lockedUntil) {
			delete(l.attempts, username)
			removed++
		}
	}
	return removed
}

// makeRoom keeps the table under maxEntries before a new username is
// tracked. Lapsed entries go first, then the unlocked entry with the oldest
// window. Active locks are never evicted; when every slot holds one the new
// username is not tracked and makeRoom returns false.
func (l *LoginLimiter) makeRoom(now time.Time) bool {
	limit := l.maxEntries()
	if len(l.attempts) < limit {
		return true
	}
	if l.sweepLocked(now) > 0 && len(l.attempts) < limit {
		return true
	}

	var victim string
	var oldest time.Time
	for username, entry := range l.attempts {
		if now.Before(entry.lockedUntil) {
			continue
		}
		if victim == "" || entry.windowStart.Before(oldest) {
			victim, oldest = username, entry.windowStart
		}
	}
	if victim == "" {
		return false
	}
	delete(l.attempts, victim)
	return true
}

func (l *LoginLimiter) maxEntries() int {
	if l.cfg.MaxEntries > 0 {
		return l.cfg.MaxEntries
	}
	return constants.DefaultLoginLimiterMaxEntries
}

// Tracked returns the number of usernames currently held.
func (l *LoginLimiter) Tracked() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

func (l *LoginLimiter) StartSweeper(ctx context.Context) {
	if !l.enabled() {
		return
	}

	go func() {
		ticker := time.NewTicker(constants.LoginLimiterSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
