// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// SaltLen is the per-user salt size in bytes.
const SaltLen = 16

// Params are Argon2id cost parameters.
type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams is tuned for server-side hashing.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 1, KeyLen: 32}

// FastParams keeps tests quick; never use it for real accounts.
var FastParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}

// Hasher hashes and verifies passwords with fixed parameters.
type Hasher struct{ p Params }

// NewHasher returns a hasher using p.
func NewHasher(p Params) *Hasher { return &Hasher{p: p} }

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash returns the Argon2id hash of password using the provided salt.
func (h *Hasher) Hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)
}

// NewCredentials draws a fresh salt and hashes password with it.
func (h *Hasher) NewCredentials(password string) (hash, salt []byte, err error) {
	salt, err = RandBytes(SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return h.Hash([]byte(password), salt), salt, nil
}

// Verify checks password against the expected hash and salt in constant time.
func (h *Hasher) Verify(password, salt, expected []byte) bool {
	got := h.Hash(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
