package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map; past it the map is reset.
const maxTrackedClients = 10000

// LoginLimiter throttles login attempts per client IP.
type LoginLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewLoginLimiter allows rps attempts per second per IP with the given burst.
// A non-positive rps disables limiting.
func NewLoginLimiter(rps float64, burst int) *LoginLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &LoginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether ip may attempt another login now.
func (l *LoginLimiter) Allow(ip string) bool {
	if l == nil || l.rate <= 0 {
		return true
	}
	return l.get(ip).Allow()
}

// AllowRequest is Allow keyed by the request's client address.
func (l *LoginLimiter) AllowRequest(r *http.Request) bool {
	return l.Allow(clientIP(r))
}

func (l *LoginLimiter) get(ip string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[ip]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limiters[ip]; ok {
		return lim
	}
	if len(l.limiters) >= maxTrackedClients {
		l.limiters = make(map[string]*rate.Limiter)
	}
	lim = rate.NewLimiter(l.rate, l.burst)
	l.limiters[ip] = lim
	return lim
}

// Middleware answers 429 once the caller's budget is spent.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.AllowRequest(r) {
			w.Header().Set("Retry-After", "5")
			writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
