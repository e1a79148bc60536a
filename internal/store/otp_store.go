package store

import (
	"time"

	"github.com/authgate/api/internal/models"
	"gorm.io/gorm"
)

// OtpStore persists pending OTP challenges, one per identifier. It carries no
// business rules beyond the table constraints; the auth service owns the
// protocol.
type OtpStore struct {
	DB *gorm.DB
}

func NewOtpStore(db *gorm.DB) *OtpStore {
	return &OtpStore{DB: db}
}

// Put replaces any existing challenge for the identifier. The old code becomes
// permanently unusable the moment this returns.
func (s *OtpStore) Put(identifier, otpHash string, ttl time.Duration) error {
	now := time.Now().UTC()
	challenge := models.OtpChallenge{
		Identifier: identifier,
		OtpHash:    otpHash,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ?", identifier).Delete(&models.OtpChallenge{}).Error; err != nil {
			return err
		}
		return tx.Create(&challenge).Error
	})
}

// Get returns the stored hash for a live challenge. Expired rows are treated
// as absent; they are not deleted on read.
func (s *OtpStore) Get(identifier string) (string, error) {
	var challenge models.OtpChallenge
	err := s.DB.
		Where("identifier = ? AND expires_at > ?", identifier, time.Now().UTC()).
		First(&challenge).Error
	if err != nil {
		return "", err
	}
	return challenge.OtpHash, nil
}

// Delete is idempotent; removing a missing challenge is not an error.
func (s *OtpStore) Delete(identifier string) error {
	return s.DB.Where("identifier = ?", identifier).Delete(&models.OtpChallenge{}).Error
}

// PurgeExpired reclaims rows whose expiry has passed. Expired rows are already
// unusable, so this is housekeeping, not correctness.
func (s *OtpStore) PurgeExpired() (int64, error) {
	result := s.DB.Where("expires_at <= ?", time.Now().UTC()).Delete(&models.OtpChallenge{})
	return result.RowsAffected, result.Error
}
