package auth

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the cost used for stored account passwords.
	DefaultBcryptCost = 12
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		cost: DefaultBcryptCost,
	}
}

// NewPasswordHasherWithCost is used by tests to keep hashing fast.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *PasswordHasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
