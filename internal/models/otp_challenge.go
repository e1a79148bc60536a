package models

import "time"

// OtpChallenge is a pending proof-of-ownership challenge. At most one row
// exists per identifier at any instant: issuing a new challenge replaces the
// old one, and a successful verification deletes the row. Rows are never
// updated in place.
type OtpChallenge struct {
	Identifier string    `json:"identifier" gorm:"type:varchar(255);primaryKey"`
	OtpHash    string    `json:"-" gorm:"type:text;not null"`
	ExpiresAt  time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (o *OtpChallenge) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
