package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session binds a session id to a user until it expires or is ended.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// SessionRegistry is the server-side record of live sessions. Sessions
// live in process memory only, so a restart logs everyone out.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create registers a new session for userID.
func (r *SessionRegistry) Create(userID string, ttl time.Duration) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
		}
	}

	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
	}
	r.sessions[s.ID] = s
	return s
}

// Get returns a live session. Expired sessions are dropped on lookup.
func (r *SessionRegistry) Get(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	if !r.now().Before(s.ExpiresAt) {
		delete(r.sessions, id)
		return Session{}, false
	}
	return s, true
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// Len reports how many sessions are registered, expired ones included
// until the next Create sweeps them.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

var errInvalidSessionToken = errors.New("invalid session token")

// signSession encodes s as an HS256 JWT: sub is the user id, jti the session id.
func signSession(secret []byte, s Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   s.UserID,
		ID:        s.ID,
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString(secret)
}

// parseSession verifies signature and expiry and returns the claims.
func parseSession(secret []byte, tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errInvalidSessionToken
	}
	return claims, nil
}
