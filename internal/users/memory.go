package users

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps users in process memory. It backs tests and local
// experiments; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]UserProfile
	byName map[string]string
}

// NewMemoryStore seeds a store with profiles. It panics if two profiles
// share a username or id.
func NewMemoryStore(profiles ...UserProfile) *MemoryStore {
	s := &MemoryStore{
		byID:   make(map[string]UserProfile),
		byName: make(map[string]string),
	}
	for _, p := range profiles {
		if err := s.Create(context.Background(), p); err != nil {
			panic(fmt.Sprintf("users: seed %q: %v", p.Username, err))
		}
	}
	return s
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (UserProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return UserProfile{}, false, nil
	}
	return s.byID[id], true, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (UserProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	return u, ok, nil
}

func (s *MemoryStore) Create(_ context.Context, u UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[u.Username]; exists {
		return ErrUsernameTaken
	}
	if _, exists := s.byID[u.ID]; exists {
		return fmt.Errorf("user id %q already exists", u.ID)
	}
	s.byID[u.ID] = u
	s.byName[u.Username] = u.ID
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
