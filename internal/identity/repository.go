package identity

import (
	"context"
	"time"

	"github.com/bissquit/sports-inventory/internal/domain"
)

// CredentialStore persists credential records keyed by normalized email.
type CredentialStore interface {
	// Get returns ErrUserNotFound when no record exists for email.
	Get(ctx context.Context, email string) (*domain.Credential, error)
	// Create inserts cred, returning ErrEmailExists if the email is taken.
	// The existence check and the insert happen atomically.
	Create(ctx context.Context, cred *domain.Credential) error
}

// TokenResult is a freshly issued identity token.
type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticator issues, verifies and revokes identity tokens.
type Authenticator interface {
	Issue(userID string, role domain.Role) (*TokenResult, error)
	Verify(ctx context.Context, token string) (domain.Identity, error)
	Revoke(ctx context.Context, identity domain.Identity) error
	Type() string
}
