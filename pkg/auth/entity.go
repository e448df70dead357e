package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. PasswordHash never leaves the process in
// serialized form.
type Account struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Redacted returns a copy of the account with the password hash cleared.
func (a Account) Redacted() Account {
	a.PasswordHash = ""
	return a
}

// IssuedBeforePasswordChange reports whether a token issued at iat predates
// the last password change.
func (a Account) IssuedBeforePasswordChange(iat time.Time) bool {
	return a.PasswordChangedAt != nil && iat.Before(*a.PasswordChangedAt)
}

// NormalizeEmail trims and lower-cases an address; emails are unique in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SessionToken is a signed bearer credential and the claims it carries.
type SessionToken struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the account resolved from a verified token. It belongs to a
// single request.
type Identity struct {
	Account Account
	Token   SessionToken
}
