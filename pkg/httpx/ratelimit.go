package httpx

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// RateLimitConfig is a token bucket refilled with RequestsPerWindow tokens
// per Window and holding at most Burst tokens.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

func (c RateLimitConfig) limit() rate.Limit {
	if c.Window <= 0 || c.RequestsPerWindow <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// Profiles shared by the routes. Each can be overridden with
// RATELIMIT_{NAME}_REQUESTS, RATELIMIT_{NAME}_WINDOW_SEC and
// RATELIMIT_{NAME}_BURST. Routers read them when they are built, so tests
// may replace them before constructing one.
var (
	// StrictLimit guards credential checks: the token endpoint and signup.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards authenticated writes such as code issuance and logout.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards token verification and health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}

	// PublicLimit guards account lookups, which game servers poll per player.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

// ParseRateLimitFromEnv returns def with any RATELIMIT_{name}_* overrides
// applied. Malformed or non-positive values are ignored.
func ParseRateLimitFromEnv(name string, def RateLimitConfig) RateLimitConfig {
	positive := func(field string) (int, bool) {
		v, err := strconv.Atoi(os.Getenv("RATELIMIT_" + name + "_" + field))
		return v, err == nil && v > 0
	}

	cfg := def
	if n, ok := positive("REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

// KeyFunc groups requests into buckets. An empty key exempts the request.
type KeyFunc func(*http.Request) string

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote host. The service is expected to run behind a proxy
// that overwrites both headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// CallingClientID returns the client id a token request authenticates as:
// the Basic user name, or else the client_id form field. The secret is never
// part of the key.
func CallingClientID(r *http.Request) string {
	if a := ParseAuthorization(r.Header.Get("Authorization")); a.Scheme == SchemeBasic {
		if id, _, err := a.BasicCredentials(); err == nil {
			return id
		}
	}
	if IsFormContentType(r.Header.Get("Content-Type")) && r.ParseForm() == nil {
		return r.PostForm.Get("client_id")
	}
	return ""
}

// JoinKeys concatenates the non-empty keys of fns with "|". The result is
// empty only when every part is.
func JoinKeys(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, "|")
	}
}

// limiterIdleTTL is how long an untouched bucket is kept. By then it has
// refilled under every profile, so dropping it loses nothing.
const limiterIdleTTL = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter holds one token bucket per key.
type KeyedLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewKeyedLimiter returns a limiter for cfg. A nil now reads the wall clock.
func NewKeyedLimiter(cfg RateLimitConfig, now func() time.Time) *KeyedLimiter {
	if now == nil {
		now = time.Now
	}
	return &KeyedLimiter{
		cfg:       cfg,
		now:       now,
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
	}
}

// Allow takes one token from key's bucket. When the bucket is empty it
// reports how long until the next token.
func (l *KeyedLimiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.cfg.limit(), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.sweepLocked(now)
	l.mu.Unlock()

	if b.lim.AllowN(now, 1) {
		return true, 0
	}

	r := b.lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Len reports how many buckets are held.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *KeyedLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < limiterIdleTTL {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= limiterIdleTTL {
			delete(l.buckets, k)
		}
	}
}

// RateLimit rejects requests whose bucket is empty with 429 and a
// Retry-After header in whole seconds.
func RateLimit(l *KeyedLimiter, key KeyFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := l.Allow(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(wait.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", l.cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("key", k),
				slog.String("path", r.URL.Path),
				slog.Int("retry_after", retryAfter),
			)
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "too many requests, retry later",
			})
		})
	}
}

// RateLimitByIP limits each client IP separately.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimit(NewKeyedLimiter(cfg, nil), ClientIP)
}

// RateLimitByIPAndClient limits each (IP, client id) pair separately, so one
// misbehaving game build cannot starve other clients behind the same NAT.
func RateLimitByIPAndClient(cfg RateLimitConfig) Middleware {
	return RateLimit(NewKeyedLimiter(cfg, nil), JoinKeys(ClientIP, CallingClientID))
}
