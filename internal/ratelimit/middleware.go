package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Middleware applies the limiter to public endpoints. A failing store
// fails open: dropping verifications because Redis hiccuped would punish
// the wrong party.
type Middleware struct {
	limiter    *Limiter
	logger     *slog.Logger
	trustProxy bool
}

type Option func(*Middleware)

// TrustProxyHeaders keys the limit on the first X-Forwarded-For hop. Only
// enable behind a proxy that overwrites the header; otherwise any client
// can rotate it to bypass the limit.
func TrustProxyHeaders() Option {
	return func(m *Middleware) { m.trustProxy = true }
}

func NewMiddleware(limiter *Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := m.clientIP(r)

		result, err := m.limiter.Check(ctx, ip)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) clientIP(r *http.Request) string {
	if m.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
