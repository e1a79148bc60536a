package utils

import (
	"errors"

	"github.com/authgate/api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = 12

// ConfigureHashing sets the bcrypt work factor used for passwords and OTP codes.
func ConfigureHashing(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		bcryptCost = cost
	}
}

func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckSecret reports whether secret matches the stored bcrypt hash. A
// malformed stored hash is treated as a mismatch: it is logged, never
// propagated, so one corrupted row cannot take down authentication.
func CheckSecret(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		logger.Error("stored_hash_invalid", err, nil)
	}
	return false
}
