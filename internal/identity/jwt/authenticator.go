// Package jwt implements identity tokens as HS256-signed JWTs.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/identity"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = time.Hour

// Config contains JWT settings.
type Config struct {
	SecretKey string
	TokenTTL  time.Duration
	// Leeway tolerates clock skew when checking expiry. Zero means none.
	Leeway time.Duration
	Issuer string
}

// RevocationList remembers revoked token IDs until the tokens would have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims are the JWT claims of an identity token. Subject holds the user ID.
type Claims struct {
	Role domain.Role `json:"role"`
	gojwt.RegisteredClaims
}

// Authenticator issues and verifies identity tokens.
type Authenticator struct {
	secret      []byte
	ttl         time.Duration
	issuer      string
	parser      *gojwt.Parser
	revocations RevocationList
	now         func() time.Time
}

// NewAuthenticator creates a new JWT authenticator. revocations may be nil,
// in which case tokens cannot be revoked before they expire.
func NewAuthenticator(cfg Config, revocations RevocationList) (*Authenticator, error) {
	return newAuthenticator(cfg, revocations, time.Now)
}

func newAuthenticator(cfg Config, revocations RevocationList, now func() time.Time) (*Authenticator, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	a := &Authenticator{
		secret:      []byte(cfg.SecretKey),
		ttl:         ttl,
		issuer:      cfg.Issuer,
		revocations: revocations,
		now:         now,
	}

	a.parser = gojwt.NewParser(
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		gojwt.WithLeeway(cfg.Leeway),
		gojwt.WithTimeFunc(func() time.Time { return a.now() }),
	)

	return a, nil
}

// Type returns the authenticator kind.
func (a *Authenticator) Type() string {
	return "jwt"
}

// Issue signs a token for userID and role, valid for the configured TTL.
func (a *Authenticator) Issue(userID string, role domain.Role) (*identity.TokenResult, error) {
	issuedAt := a.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(a.ttl)

	claims := Claims{
		Role: role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  gojwt.NewNumericDate(issuedAt),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &identity.TokenResult{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature, expiry and revocation state of token.
// The signature is checked first, so a tampered token never reports ErrTokenExpired.
func (a *Authenticator) Verify(ctx context.Context, token string) (domain.Identity, error) {
	claims := &Claims{}
	if _, err := a.parser.ParseWithClaims(token, claims, a.keyFunc); err != nil {
		return domain.Identity{}, classify(err)
	}

	if claims.Subject == "" || claims.ID == "" || !claims.Role.Valid() {
		return domain.Identity{}, identity.ErrTokenMalformed
	}

	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return domain.Identity{}, fmt.Errorf("%w: check revocation: %w", identity.ErrStorage, err)
		}
		if revoked {
			return domain.Identity{}, identity.ErrTokenRevoked
		}
	}

	return domain.Identity{
		UserID:    claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke stops id's token from verifying until it expires.
func (a *Authenticator) Revoke(ctx context.Context, id domain.Identity) error {
	if a.revocations == nil {
		return errors.New("token revocation is not configured")
	}
	if id.TokenID == "" {
		return identity.ErrTokenMalformed
	}
	return a.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt)
}

func (a *Authenticator) keyFunc(_ *gojwt.Token) (interface{}, error) {
	return a.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", identity.ErrTokenSignature, err)
	case errors.Is(err, gojwt.ErrTokenExpired):
		return identity.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %w", identity.ErrTokenMalformed, err)
	}
}
