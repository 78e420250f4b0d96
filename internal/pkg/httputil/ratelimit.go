package httputil

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterPruneSize  = 4096
	limiterMaxClients = 10000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address. Clients are keyed
// by the TCP peer unless proxy headers are trusted. At most maxClients buckets
// are kept; the least recently seen one is evicted to make room.
type IPRateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	limit      rate.Limit
	burst      int
	maxClients int
	trustProxy bool
	now        func() time.Time
}

// NewIPRateLimiter creates a limiter admitting rps requests per second per client
// with the given burst.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		clients:    make(map[string]*clientLimiter),
		limit:      rate.Limit(rps),
		burst:      burst,
		maxClients: limiterMaxClients,
		now:        time.Now,
	}
}

// TrustProxyHeaders keys clients by the address middleware.RealIP derived from
// X-Forwarded-For / X-Real-IP. Enable only behind a proxy that overwrites them.
func (l *IPRateLimiter) TrustProxyHeaders() *IPRateLimiter {
	l.trustProxy = true
	return l
}

// Len returns the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Allow reports whether the client identified by key may proceed.
func (l *IPRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) >= limiterPruneSize {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
	}

	c, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.evictOldest()
		}
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) evictOldest() {
	var (
		oldestKey  string
		oldestSeen time.Time
		found      bool
	)
	for k, c := range l.clients {
		if !found || c.lastSeen.Before(oldestSeen) {
			oldestKey, oldestSeen, found = k, c.lastSeen, true
		}
	}
	delete(l.clients, oldestKey)
}

func (l *IPRateLimiter) clientKey(r *http.Request) string {
	addr := r.RemoteAddr
	if !l.trustProxy {
		addr = PeerAddr(r)
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// RateLimitMiddleware rejects clients exceeding the limiter with 429.
// A nil limiter disables limiting.
func RateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(limiter.clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				Error(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type peerAddrKey struct{}

// PeerAddrMiddleware records the TCP peer address. It must run before
// middleware.RealIP, which rewrites RemoteAddr from request headers.
func PeerAddrMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerAddrKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PeerAddr returns the address recorded by PeerAddrMiddleware, or RemoteAddr
// when the middleware did not run.
func PeerAddr(r *http.Request) string {
	if addr, ok := r.Context().Value(peerAddrKey{}).(string); ok {
		return addr
	}
	return r.RemoteAddr
}
