// Package identity handles registration, login and token validation.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/pkg/httputil"
	"golang.org/x/crypto/bcrypt"
)

// Service implements the identity use cases on top of a credential store
// and a token authenticator.
type Service struct {
	store      CredentialStore
	auth       Authenticator
	bcryptCost int
	dummyHash  []byte
}

// ServiceConfig tunes password hashing.
type ServiceConfig struct {
	BcryptCost int
}

// NewService creates a new identity service.
func NewService(store CredentialStore, auth Authenticator, cfg ServiceConfig) *Service {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	s := &Service{
		store:      store,
		auth:       auth,
		bcryptCost: cost,
	}

	// Compared against when the email is unknown so both paths cost one bcrypt run.
	if hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost); err == nil {
		s.dummyHash = hash
	}

	return s
}

// RegisterInput holds registration data.
type RegisterInput struct {
	Email    string
	Password string
	Role     domain.Role
}

// Register creates a credential record with a bcrypt hash of the password.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	if !input.Role.Valid() {
		return ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return ErrPasswordTooLong
		}
		return fmt.Errorf("hash password: %w", err)
	}

	cred := &domain.Credential{
		Email:        domain.NormalizeEmail(input.Email),
		PasswordHash: string(hash),
		Role:         input.Role,
	}

	if err := s.store.Create(ctx, cred); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return ErrEmailExists
		}
		return fmt.Errorf("create credential: %w", err)
	}

	return nil
}

// VerifyPassword checks the password for email and returns the stored role.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (domain.Role, error) {
	cred, err := s.store.Get(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			if s.dummyHash != nil {
				_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			}
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return cred.Role, nil
}

// LoginInput holds login data.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues an identity token.
func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	role, err := s.VerifyPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.auth.Issue(domain.NormalizeEmail(input.Email), role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Logout revokes the token the identity was resolved from.
func (s *Service) Logout(ctx context.Context, identity domain.Identity) error {
	if err := s.auth.Revoke(ctx, identity); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ValidateToken validates a token and returns the identity it carries.
// Storage failures are reported as httputil.ErrAuthUnavailable so the guard
// answers 500 instead of treating the token as invalid.
func (s *Service) ValidateToken(ctx context.Context, token string) (domain.Identity, error) {
	id, err := s.auth.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrStorage) {
			return domain.Identity{}, fmt.Errorf("%w: %w", httputil.ErrAuthUnavailable, err)
		}
		return domain.Identity{}, err
	}
	return id, nil
}
