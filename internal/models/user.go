package models

import "time"

// User is the identity record. PasswordHash never holds the plaintext, and
// ResetToken/ResetTokenExpiresAt are either both set or both nil.
type User struct {
	ID                  string
	Name                string
	Email               string
	Phone               *string
	PasswordHash        []byte
	SecurityQuestion    string
	SecurityAnswer      string
	ResetToken          *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
