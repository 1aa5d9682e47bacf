// Package auth verifies credentials against the credential store and
// manages the session cookie that marks a browser as logged in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"file-portal/internal/users"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLockedOut indicates too many recent failures for the username.
	ErrLockedOut = errors.New("too many failed login attempts")
)

// CredentialStore is the read side of the users table.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (users.UserProfile, bool, error)
	FindByID(ctx context.Context, id string) (users.UserProfile, bool, error)
}

// Options holds session and lockout settings.
type Options struct {
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool

	MaxAttempts     int
	LockoutDuration time.Duration
	LockoutWindow   time.Duration
}

func (o Options) cookieName() string {
	if o.CookieName == "" {
		return "fp_session"
	}
	return o.CookieName
}

func (o Options) ttl() time.Duration {
	if o.SessionTTL <= 0 {
		return 12 * time.Hour
	}
	return o.SessionTTL
}

// Authenticator checks passwords and issues, resolves and ends sessions.
type Authenticator struct {
	store    CredentialStore
	opts     Options
	secret   []byte
	sessions *SessionRegistry
	lockout  *Lockout
	log      *slog.Logger
}

func New(store CredentialStore, opts Options, log *slog.Logger) *Authenticator {
	window := opts.LockoutWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &Authenticator{
		store:    store,
		opts:     opts,
		secret:   []byte(opts.SessionSecret),
		sessions: NewSessionRegistry(),
		lockout:  NewLockout(opts.MaxAttempts, opts.LockoutDuration, window),
		log:      log,
	}
}

// Verify checks username and password without touching any session.
func (a *Authenticator) Verify(ctx context.Context, username, password string) (users.UserProfile, error) {
	if locked, _ := a.lockout.IsLocked(username); locked {
		return users.UserProfile{}, ErrLockedOut
	}

	user, ok, err := a.store.FindByUsername(ctx, username)
	if err != nil {
		return users.UserProfile{}, fmt.Errorf("find user: %w", err)
	}

	if !ok || !CheckPassword(user.PasswordHash, password) {
		if locked, until := a.lockout.RecordFailedAttempt(username); locked {
			a.log.WarnContext(ctx, "account_locked", "username", username, "until", until.UTC().Format(time.RFC3339))
		}
		return users.UserProfile{}, ErrInvalidCredentials
	}

	a.lockout.RecordSuccessfulLogin(username)
	return user, nil
}

// Authenticate verifies the credentials and, on success, starts a new
// session and sets its cookie on w.
func (a *Authenticator) Authenticate(w http.ResponseWriter, r *http.Request, username, password string) (users.UserProfile, error) {
	user, err := a.Verify(r.Context(), username, password)
	if err != nil {
		return users.UserProfile{}, err
	}

	s := a.sessions.Create(user.ID, a.opts.ttl())
	tok, err := signSession(a.secret, s)
	if err != nil {
		a.sessions.Delete(s.ID)
		return users.UserProfile{}, fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.cookieName(),
		Value:    tok,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.opts.CookieSecure,
	})
	return user, nil
}

// CurrentUser resolves the request's session cookie to a user. It returns
// false when there is no cookie, the token is bad or expired, the session
// was ended, or the user no longer exists.
func (a *Authenticator) CurrentUser(r *http.Request) (users.UserProfile, bool) {
	s, ok := a.session(r)
	if !ok {
		return users.UserProfile{}, false
	}

	user, ok, err := a.store.FindByID(r.Context(), s.UserID)
	if err != nil {
		a.log.ErrorContext(r.Context(), "session_user_lookup_failed", "err", err)
		return users.UserProfile{}, false
	}
	return user, ok
}

// EndSession forgets the request's session and clears the cookie.
func (a *Authenticator) EndSession(w http.ResponseWriter, r *http.Request) {
	if s, ok := a.session(r); ok {
		a.sessions.Delete(s.ID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.opts.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.opts.CookieSecure,
	})
}

// ActiveSessions reports the number of registered sessions.
func (a *Authenticator) ActiveSessions() int {
	return a.sessions.Len()
}

func (a *Authenticator) session(r *http.Request) (Session, bool) {
	c, err := r.Cookie(a.opts.cookieName())
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	claims, err := parseSession(a.secret, c.Value)
	if err != nil {
		return Session{}, false
	}
	s, ok := a.sessions.Get(claims.ID)
	if !ok || s.UserID != claims.Subject {
		return Session{}, false
	}
	return s, true
}
