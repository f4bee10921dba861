package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
	"github.com/AlibekovAA/bloglist/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// the cleanup interval are forgotten.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	stop     chan struct{}
	once     sync.Once
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go rl.sweep(constants.RateLimitCleanupInterval)
	return rl
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if now.Sub(v.lastSeen) > every {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

type limitRule struct {
	name    string
	method  string
	path    string
	limiter *RateLimiter
}

// StrictRateLimiter applies tighter buckets to the credential endpoints
// than to the rest of the API.
type StrictRateLimiter struct {
	rules   []limitRule
	general *RateLimiter
}

func NewStrictRateLimiter() *StrictRateLimiter {
	return &StrictRateLimiter{
		rules: []limitRule{
			{name: "login", method: http.MethodPost, path: "/login",
				limiter: NewRateLimiter(constants.RateLimitLoginRequestsPerSecond, constants.RateLimitLoginBurst)},
			{name: "register", method: http.MethodPost, path: "/users",
				limiter: NewRateLimiter(constants.RateLimitRegisterRequestsPerSecond, constants.RateLimitRegisterBurst)},
		},
		general: NewRateLimiter(constants.RateLimitGeneralRequestsPerSecond, constants.RateLimitGeneralBurst),
	}
}

func (srl *StrictRateLimiter) Stop() {
	for _, rule := range srl.rules {
		rule.limiter.Stop()
	}
	srl.general.Stop()
}

func (srl *StrictRateLimiter) limiterFor(r *http.Request) (*RateLimiter, string) {
	for _, rule := range srl.rules {
		if r.Method == rule.method && r.URL.Path == rule.path {
			return rule.limiter, rule.name
		}
	}
	return srl.general, "general"
}

// Middleware applies the matching limiter keyed by client IP. Health and
// metrics scrapes are never limited.
func (srl *StrictRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		limiter, name := srl.limiterFor(r)
		if !limiter.Allow(ClientIP(r)) {
			metrics.RateLimitBlocked.WithLabelValues(httpmetrics.NormalizePath(r.URL.Path), name).Inc()
			w.Header().Set("Retry-After", "1")
			WriteErrorEnvelope(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded", nil, TraceIDFromContext(r.Context()))
			return
		}

		next.ServeHTTP(w, r)
	})
}
