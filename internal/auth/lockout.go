// lockout.go - Account lockout after repeated failed logins.
package auth

import (
	"sync"
	"time"
)

// loginAttempt tracks failed login attempts for an account
type loginAttempt struct {
	count       int
	lastAttempt time.Time
	lockedUntil time.Time
}

// Lockout locks a username for a while after too many failed logins
// inside a sliding window. A zero maxAttempts disables it.
type Lockout struct {
	mu              sync.Mutex
	attempts        map[string]*loginAttempt
	maxAttempts     int
	lockoutDuration time.Duration
	windowDuration  time.Duration
	now             func() time.Time
}

// NewLockout creates a lockout table.
// maxAttempts: failed attempts before lockout (e.g., 5)
// lockoutDuration: how long to lock the account (e.g., 15 minutes)
// windowDuration: time window to count attempts (e.g., 10 minutes)
func NewLockout(maxAttempts int, lockoutDuration, windowDuration time.Duration) *Lockout {
	return &Lockout{
		attempts:        make(map[string]*loginAttempt),
		maxAttempts:     maxAttempts,
		lockoutDuration: lockoutDuration,
		windowDuration:  windowDuration,
		now:             time.Now,
	}
}

// RecordFailedAttempt records a failed login attempt.
// Returns true if the account is now locked.
func (l *Lockout) RecordFailedAttempt(username string) (locked bool, lockedUntil time.Time) {
	if l.maxAttempts <= 0 {
		return false, time.Time{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purgeLocked(now)

	attempt, exists := l.attempts[username]
	if !exists {
		attempt = &loginAttempt{}
		l.attempts[username] = attempt
	}

	// Reset count if outside window or a previous lockout has run out
	if now.Sub(attempt.lastAttempt) > l.windowDuration ||
		(!attempt.lockedUntil.IsZero() && !now.Before(attempt.lockedUntil)) {
		attempt.count = 0
		attempt.lockedUntil = time.Time{}
	}

	attempt.count++
	attempt.lastAttempt = now

	if attempt.count >= l.maxAttempts {
		attempt.lockedUntil = now.Add(l.lockoutDuration)
		return true, attempt.lockedUntil
	}

	return false, time.Time{}
}

// RecordSuccessfulLogin resets failed attempts for a username
func (l *Lockout) RecordSuccessfulLogin(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, username)
}

// IsLocked checks if an account is currently locked
func (l *Lockout) IsLocked(username string) (locked bool, lockedUntil time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempt, exists := l.attempts[username]
	if !exists {
		return false, time.Time{}
	}

	if !attempt.lockedUntil.IsZero() && l.now().Before(attempt.lockedUntil) {
		return true, attempt.lockedUntil
	}
	return false, time.Time{}
}

// purgeLocked drops entries whose lockout is over and whose last attempt
// fell out of the window. Caller holds l.mu.
func (l *Lockout) purgeLocked(now time.Time) {
	for username, attempt := range l.attempts {
		if (attempt.lockedUntil.IsZero() || now.After(attempt.lockedUntil)) &&
			now.Sub(attempt.lastAttempt) > 2*l.windowDuration {
			delete(l.attempts, username)
		}
	}
}
