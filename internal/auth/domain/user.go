package domain

import "time"

// User is the long-lived root entity. PasswordHash is nil for accounts
// created without a local credential; MFASecret is nil until an enrollment
// has been confirmed.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Phone        *string
	PasswordHash *string // argon2id encoded
	IsActive     bool
	MFAEnabled   bool
	MFASecret    *string // TOTP secret, base32 encoded
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
