package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/kuitang/agreements-e2e/internal/errs"
)

// DefaultRetryAfterSeconds is the Retry-After value sent with 429 responses.
const DefaultRetryAfterSeconds = 1

// ClientIP keys requests by the connection's remote address. Forwarding
// headers are ignored: the client controls them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HeaderClientIP keys requests by header, which only a trusted proxy may
// set. Requests without it fall back to ClientIP.
func HeaderClientIP(header string) func(r *http.Request) string {
	return func(r *http.Request) string {
		if ip := strings.TrimSpace(r.Header.Get(header)); ip != "" {
			return ip
		}
		return ClientIP(r)
	}
}

// ClientKey keys r the way the limiter's config says to.
func (rl *RateLimiter) ClientKey(r *http.Request) string {
	if rl.config.ClientIPHeader != "" {
		return HeaderClientIP(rl.config.ClientIPHeader)(r)
	}
	return ClientIP(r)
}

// ErrRateLimited is reported once a client exceeds its limit.
var ErrRateLimited = errs.New(errs.ResourceExhausted, "rate limit exceeded")

// RateLimitMiddleware returns 429 Too Many Requests with a JSON error body
// once a client exceeds its limit. Requests for which keyFn returns "" pass
// through unlimited.
func RateLimitMiddleware(limiter *RateLimiter, keyFn func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			rateLimiter := limiter.GetLimiter(key)
			if !rateLimiter.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(DefaultRetryAfterSeconds))
				w.Header().Set("X-RateLimit-Remaining", "0")
				errs.WriteJSON(w, ErrRateLimited)
				return
			}

			remaining := int(rateLimiter.Tokens())
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			next.ServeHTTP(w, r)
		})
	}
}
