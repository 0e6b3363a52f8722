package security

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

// Hasher hashes and checks passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash password hashes a plain text password with bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// HashIfNeeded leaves values that are already bcrypt digests untouched.
func (h *Hasher) HashIfNeeded(value string) (string, error) {
	if IsHashed(value) {
		return value, nil
	}
	return h.Hash(value)
}

// Verify reports whether plain matches hash. A malformed hash never matches.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IsHashed recognises the modular crypt prefix bcrypt emits ($2a$, $2b$, $2y$).
func IsHashed(value string) bool {
	if !strings.HasPrefix(value, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}
