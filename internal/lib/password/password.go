package password

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes passwords with bcrypt at a fixed cost.
//
// The plaintext is reduced to a base64 SHA-256 digest first, so bcrypt's 72-byte
// input limit never truncates or rejects a long multibyte password.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into the range bcrypt accepts; zero means bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}

	return &Hasher{cost: cost}
}

func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a self-describing bcrypt hash. The salt is random, so equal inputs give different outputs.
func (h *Hasher) Hash(plaintext string) (string, error) {
	const op = "password.Hash"

	hash, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a mismatch.
func (h *Hasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(plaintext)) == nil
}

// 44 bytes, no NUL.
func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])

	return out
}
