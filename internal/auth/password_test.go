package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcryptCost, cost)
	assert.True(t, CheckPassword(hash, "correct-horse-1"))
	assert.False(t, CheckPassword(hash, "correct-horse-2"))
}

func TestCheckPassword_WerkzeugPBKDF2(t *testing.T) {
	key := pbkdf2.Key([]byte("s3cret-pass"), []byte("NaCl1234"), 1000, sha256.Size, sha256.New)
	stored := "pbkdf2:sha256:1000$NaCl1234$" + hex.EncodeToString(key)

	assert.True(t, CheckPassword(stored, "s3cret-pass"))
	assert.False(t, CheckPassword(stored, "s3cret-pasS"))
}

func TestCheckPassword_WerkzeugScrypt(t *testing.T) {
	key, err := scrypt.Key([]byte("s3cret-pass"), []byte("pepper"), 16, 8, 1, 64)
	require.NoError(t, err)
	stored := "scrypt:16:8:1$pepper$" + hex.EncodeToString(key)

	assert.True(t, CheckPassword(stored, "s3cret-pass"))
	assert.False(t, CheckPassword(stored, "wrong"))
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, stored := range []string{
		"",
		"plaintext",
		"pbkdf2:md5:1000$salt$abcd",
		"pbkdf2:sha256:zero$salt$abcd",
		"pbkdf2:sha256:1000$salt$",
		"scrypt:1:2$salt$abcd",
		"argon2$salt$abcd",
	} {
		assert.False(t, CheckPassword(stored, "anything"), "stored=%q", stored)
	}
}
