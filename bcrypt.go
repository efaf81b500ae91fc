package auth

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordHashCost is the bcrypt work factor used for stored secrets
const DefaultPasswordHashCost = 8

// MaxPasswordBytes is the longest secret bcrypt reads in full
const MaxPasswordBytes = 72

// Hasher is the bcrypt backed PasswordAuthenticator. The salt is generated
// per call and embedded in the output.
type Hasher struct {
	cost      int
	dummyOnce sync.Once
	dummy     string
}

var _ PasswordAuthenticator = (*Hasher)(nil)

// NewHasher returns a Hasher for the given cost. Out of range costs fall
// back to the build default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}
	return &Hasher{cost: cost}
}

// Cost returns the configured work factor
func (h *Hasher) Cost() int {
	return h.cost
}

// HashPassword will generate a password hash
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(out), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password. A malformed hash is a mismatch.
// Secrets bcrypt would truncate never match.
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	if len(password) > MaxPasswordBytes {
		return ErrMismatchedHashAndPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// Verify is the boolean form of ComparePasswordAndHash
func (h *Hasher) Verify(password, hash string) bool {
	return h.ComparePasswordAndHash(password, hash) == nil
}

// DummyHash is a hash of a random secret nobody knows. Comparing against it
// costs the same as comparing against a real record.
func (h *Hasher) DummyHash() string {
	h.dummyOnce.Do(func() {
		h.dummy = h.randomPasswordHash()
	})
	return h.dummy
}

func (h *Hasher) randomPasswordHash() string {
	out, err := h.HashPassword(uuid.NewString())
	if err != nil {
		return h.randomPasswordHash()
	}
	return out
}

// HashPassword hashes with the build default cost
func HashPassword(password string) (string, error) {
	return NewHasher(passwordHashCost()).HashPassword(password)
}

// ComparePasswordAndHash compares using the cost embedded in hash
func ComparePasswordAndHash(password, hash string) error {
	return (&Hasher{}).ComparePasswordAndHash(password, hash)
}
