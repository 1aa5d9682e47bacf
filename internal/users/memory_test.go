package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(UserProfile{ID: "u-1", Username: "alice", PasswordHash: "h1"})

	got, ok, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u-1", got.ID)

	got, ok, err = s.FindByID(ctx, "u-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	_, ok, err = s.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Create(ctx, UserProfile{ID: "u-2", Username: "alice", PasswordHash: "h2"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice", true},
		{"al", false},
		{"alice smith", false},
		{"alice_01", true},
	}
	for _, tt := range tests {
		ok, _ := ValidateUsername(tt.in)
		assert.Equal(t, tt.want, ok, tt.in)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"short1", false},
		{"lettersonly", false},
		{"12345678", false},
		{"correct-horse-9", true},
	}
	for _, tt := range tests {
		ok, _ := ValidatePassword(tt.in)
		assert.Equal(t, tt.want, ok, tt.in)
	}
}

func TestMemoryStore_DuplicateSeedPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewMemoryStore(
			UserProfile{ID: "u-1", Username: "alice"},
			UserProfile{ID: "u-2", Username: "alice"},
		)
	})
	assert.Panics(t, func() {
		NewMemoryStore(
			UserProfile{ID: "u-1", Username: "alice"},
			UserProfile{ID: "u-1", Username: "bob"},
		)
	})
}

func TestMemoryStore_CreateRejectsDuplicateID(t *testing.T) {
	s := NewMemoryStore(UserProfile{ID: "u-1", Username: "alice"})

	err := s.Create(context.Background(), UserProfile{ID: "u-1", Username: "bob"})
	require.Error(t, err)

	_, ok, err := s.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}
