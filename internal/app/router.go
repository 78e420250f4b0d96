package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bissquit/sports-inventory/internal/domain"
	"github.com/bissquit/sports-inventory/internal/identity"
	"github.com/bissquit/sports-inventory/internal/inventory"
	"github.com/bissquit/sports-inventory/internal/pkg/ctxlog"
	"github.com/bissquit/sports-inventory/internal/pkg/httputil"
	"github.com/bissquit/sports-inventory/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the Inventory Control for Sports Centers API!"

// RouterDeps are the collaborators the HTTP router is built from.
type RouterDeps struct {
	Logger         *slog.Logger
	Identity       *identity.Service
	Inventory      *inventory.Service
	LoginLimiter   *httputil.IPRateLimiter
	CORSOrigins    []string
	RequestTimeout time.Duration
	OpenAPIPath    string
	// Ready reports whether backing services are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// publicRoutes are the only routes reachable without a token.
var publicRoutes = map[string]bool{
	"GET /":                 true,
	"GET /healthz":          true,
	"GET /readyz":           true,
	"GET /version":          true,
	"GET /api/openapi.yaml": true,
	"POST /api/register":    true,
	"POST /api/login":       true,
}

// NewRouter builds the HTTP handler. Every route outside publicRoutes sits
// behind RequireRoles with an explicit role set.
func NewRouter(d RouterDeps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Set before any Route call so sub-routers inherit them.
	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(d.CORSOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(d.Logger))
	// The login limiter keys on the TCP peer, recorded before RealIP rewrites it.
	r.Use(httputil.PeerAddrMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.Message(w, http.StatusOK, WelcomeMessage)
	})
	r.Get("/healthz", healthzHandler)
	r.Get("/readyz", readyzHandler(d.Ready))
	r.Get("/version", versionHandler)

	identityHandler := identity.NewHandler(d.Identity, d.LoginLimiter)
	inventoryHandler := inventory.NewHandler(d.Inventory)

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi.yaml", openAPIHandler(d.OpenAPIPath))

		identityHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireRoles(d.Identity))
			identityHandler.RegisterProtectedRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireRoles(d.Identity, domain.RoleAdmin, domain.RoleUser))
			inventoryHandler.RegisterReadRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(httputil.RequireRoles(d.Identity, domain.RoleAdmin))
			inventoryHandler.RegisterWriteRoutes(r)
		})
	})

	return r
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func readyzHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready == nil {
			httputil.Text(w, http.StatusOK, "OK")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := ready(ctx); err != nil {
			ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
			httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}

		httputil.Text(w, http.StatusOK, "OK")
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, version.Get())
}

func openAPIHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if path == "" {
			httputil.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, path)
	}
}
