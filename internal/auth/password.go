package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// bcryptCost is used for every hash the portal creates.
const bcryptCost = 12

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
//
// bcrypt hashes are the native format. Werkzeug-style hashes
// ("pbkdf2:sha256:600000$salt$hex", "scrypt:32768:8:1$salt$hex") are also
// accepted so users imported from an older deployment can still log in.
func CheckPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	method, salt, want, ok := splitWerkzeugHash(stored)
	if !ok {
		return false
	}

	var got []byte
	switch {
	case strings.HasPrefix(method, "pbkdf2:"):
		got, ok = werkzeugPBKDF2(method, salt, password)
	case strings.HasPrefix(method, "scrypt"):
		got, ok = werkzeugScrypt(method, salt, password)
	default:
		return false
	}
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(got)), []byte(want)) == 1
}

func splitWerkzeugHash(stored string) (method, salt, digest string, ok bool) {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// werkzeugPBKDF2 handles "pbkdf2:<hash>[:<iterations>]".
func werkzeugPBKDF2(method, salt, password string) ([]byte, bool) {
	args := strings.Split(method, ":")
	if len(args) < 2 || len(args) > 3 {
		return nil, false
	}

	var h func() hash.Hash
	switch args[1] {
	case "sha256":
		h = sha256.New
	case "sha512":
		h = sha512.New
	case "sha1":
		h = sha1.New
	default:
		return nil, false
	}

	iterations := 600000
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			return nil, false
		}
		iterations = n
	}

	return pbkdf2.Key([]byte(password), []byte(salt), iterations, h().Size(), h), true
}

// werkzeugScrypt handles "scrypt[:<n>:<r>:<p>]".
func werkzeugScrypt(method, salt, password string) ([]byte, bool) {
	n, r, p := 1<<15, 8, 1
	args := strings.Split(method, ":")
	switch len(args) {
	case 1:
	case 4:
		vals := make([]int, 3)
		for i, a := range args[1:] {
			v, err := strconv.Atoi(a)
			if err != nil || v <= 0 {
				return nil, false
			}
			vals[i] = v
		}
		n, r, p = vals[0], vals[1], vals[2]
	default:
		return nil, false
	}

	key, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, 64)
	if err != nil {
		return nil, false
	}
	return key, true
}
