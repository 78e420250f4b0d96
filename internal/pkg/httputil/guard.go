package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/pkg/ctxlog"
	"github.com/bissquit/sports-inventory/internal/pkg/metrics"
)

// Guard errors.
var (
	ErrMissingToken = errors.New("missing authorization token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("insufficient permissions")

	// ErrAuthUnavailable means the token could not be checked at all, e.g. the
	// revocation list is unreachable. The request is refused with 500.
	ErrAuthUnavailable = errors.New("authorization backend unavailable")
)

type contextKey string

const identityKey contextKey = "identity"

// TokenValidator verifies a raw token and resolves the identity it carries.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (domain.Identity, error)
}

// ExtractToken returns the token carried by the Authorization header.
// Both "Bearer <token>" and a bare token are accepted.
func ExtractToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || strings.EqualFold(header, "bearer") {
		return "", false
	}

	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		token := strings.TrimSpace(rest)
		return token, token != ""
	}

	return header, true
}

// Authorize verifies the request's token and checks its role against allowed.
// An empty allowed set admits any authenticated identity.
func Authorize(r *http.Request, validator TokenValidator, allowed []domain.Role) (domain.Identity, error) {
	token, ok := ExtractToken(r)
	if !ok {
		return domain.Identity{}, ErrMissingToken
	}

	identity, err := validator.ValidateToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrAuthUnavailable) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if len(allowed) > 0 && !slices.Contains(allowed, identity.Role) {
		return identity, ErrForbidden
	}

	return identity, nil
}

// RequireRoles creates middleware that admits only callers holding one of roles.
// The wrapped handler never runs when authorization fails.
func RequireRoles(validator TokenValidator, roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := slices.Clone(roles)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := Authorize(r, validator, allowed)
			if err != nil {
				rejectUnauthorized(w, r, err)
				return
			}

			metrics.AuthDecisions.WithLabelValues("admitted").Inc()

			ctx := WithIdentity(r.Context(), identity)
			ctx = ctxlog.With(ctx, "user_id", identity.UserID, "role", string(identity.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	logger := ctxlog.FromContext(r.Context())

	switch {
	case errors.Is(err, ErrMissingToken):
		metrics.AuthDecisions.WithLabelValues("missing_token").Inc()
		Error(w, http.StatusUnauthorized, "Token is missing")
	case errors.Is(err, ErrAuthUnavailable):
		metrics.AuthDecisions.WithLabelValues("error").Inc()
		logger.Error("token check failed", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	case errors.Is(err, ErrForbidden):
		metrics.AuthDecisions.WithLabelValues("forbidden").Inc()
		logger.Info("access denied", "path", r.URL.Path, "error", err)
		Error(w, http.StatusForbidden, "Access forbidden: insufficient permissions")
	default:
		metrics.AuthDecisions.WithLabelValues("invalid_token").Inc()
		logger.Debug("token rejected", "error", err)
		Error(w, http.StatusUnauthorized, "Token is invalid or expired")
	}
}

// WithIdentity stores the verified identity in ctx.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity attached by RequireRoles.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// GetUserID extracts user ID from context.
func GetUserID(ctx context.Context) string {
	identity, _ := IdentityFromContext(ctx)
	return identity.UserID
}

// GetRole extracts role from context.
func GetRole(ctx context.Context) domain.Role {
	identity, _ := IdentityFromContext(ctx)
	return identity.Role
}
