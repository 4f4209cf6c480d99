package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Rule is a fixed-window budget: at most Limit hits per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Middleware limits requests per client IP under rule. onLimited, if not
// nil, is called for every rejected request (used for metrics).
// Wire it after chi's RealIP so RemoteAddr reflects the client.
func Middleware(l Limiter, rule Rule, onLimited func(*http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || rule.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			d := l.Allow(r.Context(), keyIP(r), rule.Limit, rule.Window)
			setHeaders(w, rule.Limit, d)
			if !d.Allowed {
				if onLimited != nil {
					onLimited(r)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": "rate_limited", "message": "rate limit exceeded"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(w http.ResponseWriter, limit int, d Decision) {
	remaining := max(limit-d.Count, 0)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !d.WindowEnd.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.WindowEnd.Unix(), 10))
		if !d.Allowed {
			secs := max(int(time.Until(d.WindowEnd).Seconds()+0.5), 1)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}
}

func keyIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}
