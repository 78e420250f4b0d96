package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Credential is a stored login record keyed by email.
type Credential struct {
	Email        string
	PasswordHash string
	Role         Role
}

// Identity is the verified caller attached to a request by the access guard.
type Identity struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

var emailFolder = cases.Fold()

// NormalizeEmail returns the canonical form of an email used as the credential key.
func NormalizeEmail(email string) string {
	return emailFolder.String(strings.TrimSpace(email))
}
