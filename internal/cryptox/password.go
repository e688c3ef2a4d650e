// Package cryptox derives and verifies password hashes. Only the derived
// hash is ever persisted; the plaintext password never leaves the request.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	scheme  = "argon2id"
	saltLen = 16
	keyLen  = 32
)

// ErrMalformedHash is returned when a stored hash cannot be decoded.
var ErrMalformedHash = errors.New("malformed password hash")

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keyLen)
}

// HashPassword derives an argon2id key from password with a fresh random
// salt and returns it encoded as "argon2id$<salt>$<key>".
func HashPassword(password string) (string, error) {
	salt := common.GenerateRandByteArray(saltLen)
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := deriveKey(pw, salt)
	return scheme + "$" + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// CheckPassword reports whether password matches the encoded hash.
// The key comparison runs in constant time.
func CheckPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != scheme {
		return false, ErrMalformedHash
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, ErrMalformedHash
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	got := deriveKey(pw, salt)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
