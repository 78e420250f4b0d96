package identity

import (
	"errors"
	"net/http"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/pkg/ctxlog"
	"github.com/bissquit/sports-inventory/internal/pkg/httputil"
	"github.com/bissquit/sports-inventory/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service      *Service
	validator    *validator.Validate
	loginLimiter *httputil.IPRateLimiter
}

// NewHandler creates a new identity handler. A nil limiter disables login rate limiting.
func NewHandler(service *Service, loginLimiter *httputil.IPRateLimiter) *Handler {
	return &Handler{
		service:      service,
		validator:    httputil.NewValidator(),
		loginLimiter: loginLimiter,
	}
}

// RegisterRoutes registers the public identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.With(httputil.RateLimitMiddleware(h.loginLimiter)).Post("/login", h.Login)
}

// RegisterProtectedRoutes registers routes that require an authenticated caller.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
}

// RegisterRequest represents registration request body.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, httputil.ErrEmptyBody) {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	err := h.service.Register(r.Context(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	ctxlog.FromContext(r.Context()).Info("user registered", "email", domain.NormalizeEmail(req.Email), "role", req.Role)
	httputil.Message(w, http.StatusCreated, "User registered successfully")
}

// LoginRequest represents login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, httputil.ErrEmptyBody) {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginAttempts.WithLabelValues("error").Inc()
		}
		h.handleServiceError(w, r, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	httputil.Token(w, token.Token)
}

// Logout handles POST /logout. The token used for the call stops being accepted.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := httputil.IdentityFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Message(w, http.StatusOK, "Logged out successfully")
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := httputil.IdentityFromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	httputil.Success(w, http.StatusOK, identity)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrEmailExists, Status: http.StatusBadRequest},
		{Error: ErrInvalidRole, Status: http.StatusBadRequest},
		{Error: ErrPasswordTooLong, Status: http.StatusBadRequest},
		{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized},
	})
}
