package models

import "strings"

type IdentifierKind string

const (
	IdentifierPhone IdentifierKind = "phone"
	IdentifierEmail IdentifierKind = "email"
)

// KindOfIdentifier classifies an identifier structurally. The kind is derived,
// never stored: a phone and an email can never collide on shape.
func KindOfIdentifier(identifier string) IdentifierKind {
	if strings.Contains(identifier, "@") {
		return IdentifierEmail
	}
	return IdentifierPhone
}

// User is a verified account keyed by its identifier (phone number or email
// address). The unique index is the authority on identifier uniqueness;
// application-level existence checks are only a fast path.
type User struct {
	BaseModel
	Identifier   string `json:"identifier" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
	Verified     bool   `json:"verified" gorm:"not null;default:false"`
}

func (u *User) IdentifierKind() IdentifierKind {
	return KindOfIdentifier(u.Identifier)
}
