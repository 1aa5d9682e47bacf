package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file-portal/internal/auth"
	"file-portal/internal/users"
)

func TestRun_CreatesUserFromStdin(t *testing.T) {
	store := users.NewMemoryStore()
	var out bytes.Buffer

	err := run(context.Background(), []string{"-username", "alice"}, strings.NewReader("s3cretpass1\n"), false, &out, store)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "created user alice")

	u, ok, err := store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "s3cretpass1", u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "s3cretpass1"))
}

func TestRun_PositionalUsernameAndDuplicate(t *testing.T) {
	store := users.NewMemoryStore(users.UserProfile{ID: "u-1", Username: "alice", PasswordHash: "x"})

	err := run(context.Background(), []string{"alice"}, strings.NewReader("s3cretpass1"), false, &bytes.Buffer{}, store)
	assert.ErrorContains(t, err, "already exists")
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		password string
		wantErr  string
	}{
		{"missing username", nil, "s3cretpass1\n", "at least 3"},
		{"bad username", []string{"-username", "bad name"}, "s3cretpass1\n", "letters, numbers"},
		{"short password", []string{"-username", "alice"}, "short1\n", "at least 8"},
		{"weak password", []string{"-username", "alice"}, "onlyletters\n", "letters and numbers"},
		{"no password", []string{"-username", "alice"}, "", "read password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.args, strings.NewReader(tt.password), false, &bytes.Buffer{}, users.NewMemoryStore())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPromptPassword_Interactive(t *testing.T) {
	answers := []string{"s3cretpass1", "s3cretpass1", "s3cretpass1", "different22"}
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}

	var out bytes.Buffer
	pw, err := promptPassword(nil, true, &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cretpass1", pw)
	assert.Contains(t, out.String(), "Repeat password: ")

	_, err = promptPassword(nil, true, &out)
	assert.ErrorContains(t, err, "do not match")
}
