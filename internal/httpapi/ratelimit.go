package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"randevulu/internal/metrics"
)

type RateLimitConfig struct {
	IPPerMinute     int
	IPBurst         int
	TenantPerMinute int
	TenantBurst     int
	// TrustProxy takes the client address from X-Forwarded-For. Enable it
	// only behind a proxy that overwrites the header.
	TrustProxy bool
}

// RateLimiter applies a token bucket per client IP and another per tenant.
// The tenant is taken from the resolved actor, so it must run inside
// AuthMiddleware to see it. Anonymous requests about a tenant draw from a
// separate bucket and never from the one its staff use.
type RateLimiter struct {
	ipLimiter     *keyedLimiter
	tenantLimiter *keyedLimiter
	trustProxy    bool
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		ipLimiter:     newKeyedLimiter(cfg.IPPerMinute, cfg.IPBurst),
		tenantLimiter: newKeyedLimiter(cfg.TenantPerMinute, cfg.TenantBurst),
		trustProxy:    cfg.TrustProxy,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r, l.trustProxy); ip != "" && !l.ipLimiter.allow(ip) {
			metrics.RateLimitRejectionsTotal.WithLabelValues("ip").Inc()
			writeError(w, requestIDFromRequest(r), http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		if key := tenantLimitKey(r); key != "" && !l.tenantLimiter.allow(key) {
			metrics.RateLimitRejectionsTotal.WithLabelValues("tenant").Inc()
			writeError(w, requestIDFromRequest(r), http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type keyedLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newKeyedLimiter(perMinute, burst int) *keyedLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 20
	}
	return &keyedLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *keyedLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *keyedLimiter) allow(key string) bool {
	return l.get(key).Allow()
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			parts := strings.Split(forwarded, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func tenantLimitKey(r *http.Request) string {
	tenantID, public := tenantFromRequest(r)
	switch {
	case tenantID == "":
		return ""
	case public:
		return "public:" + tenantID
	default:
		return "tenant:" + tenantID
	}
}

// tenantFromRequest prefers the caller's own tenant and falls back to the
// tenant a public request is about. Public ids that are not UUIDs are
// ignored.
func tenantFromRequest(r *http.Request) (string, bool) {
	if actor, ok := actorFromContext(r.Context()); ok && actor.TenantID != "" {
		return actor.TenantID, false
	}
	tenantID := strings.TrimSpace(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		if rest, ok := strings.CutPrefix(r.URL.Path, "/api/tenants/"); ok {
			tenantID, _, _ = strings.Cut(rest, "/")
		}
	}
	if tenantID == "" {
		return "", false
	}
	parsed, err := uuid.Parse(tenantID)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
