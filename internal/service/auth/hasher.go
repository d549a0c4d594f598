package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argonTime    = 1         // iterations
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4         // parallelism
	argonSaltLen = 32        // salt length in bytes
	argonKeyLen  = 32        // output length in bytes
)

// Interface to create or verify user password hashes
type PasswordHasher interface {
	// Hash derives a one-way hash from the password over a fresh random salt.
	// Both are returned as encodable strings and stored separately.
	Hash(password string) (hash string, salt string, err error)

	// Verify recomputes the hash with the stored salt and compares.
	// Must be protected against timing attacks; any decode failure is
	// a mismatch, not an error.
	Verify(password string, hash string, salt string) bool
}

// Argon2Hasher is the default PasswordHasher.
// A per-user random salt makes precomputed dictionaries useless; argon2id
// keeps brute force expensive.
type Argon2Hasher struct{}

var DefaultHasher PasswordHasher = Argon2Hasher{}

func (h Argon2Hasher) Hash(password string) (string, string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("error while generating salt. Err: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return base64.RawStdEncoding.EncodeToString(sum), base64.RawStdEncoding.EncodeToString(salt), nil
}

func (h Argon2Hasher) Verify(password string, hash string, salt string) bool {
	rawHash, err := base64.RawStdEncoding.DecodeString(hash)
	if err != nil || len(rawHash) != argonKeyLen {
		return false
	}

	rawSalt, err := base64.RawStdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}

	sum := argon2.IDKey([]byte(password), rawSalt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(sum, rawHash) == 1
}
