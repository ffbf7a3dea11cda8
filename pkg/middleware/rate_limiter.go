package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiterConfig configures the per-client limiter.
//
// Rate uses ulule's formatted syntax, e.g. "100-M", "10-S".
// PerRouteRates overrides the rate for specific routes.
// SkipPaths are matched by prefix.
type RateLimiterConfig struct {
	Rate          string            `json:"rate"`
	PerRouteRates map[string]string `json:"per_route_rates"`
	SkipPaths     []string          `json:"skip_paths"`
	AddHeaders    bool              `json:"add_headers"`
	DenyMessage   string            `json:"deny_message"`
}

// RateLimiter caches one limiter per distinct rate string.
type RateLimiter struct {
	cfg            RateLimiterConfig
	store          limiter.Store
	mu             sync.RWMutex
	limitersByRate map[string]*limiter.Limiter
}

// NewRateLimiter builds a limiter over the given store; a nil store means
// in-memory, which is fine for a single instance.
func NewRateLimiter(cfg RateLimiterConfig, store limiter.Store) *RateLimiter {
	if store == nil {
		store = memory.NewStore()
	}
	return &RateLimiter{
		cfg:            cfg,
		store:          store,
		limitersByRate: make(map[string]*limiter.Limiter),
	}
}

// Middleware returns the gin middleware, keyed by client IP.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.skipped(c.FullPath(), c.Request.URL.Path) {
			c.Next()
			return
		}

		key := "ip:" + clientIP(c)
		lim := l.limiterFor(l.rateFor(c))

		lctx, err := lim.Get(c, key)
		if err != nil {
			// limiter store failure must not block traffic
			c.Next()
			return
		}
		if l.cfg.AddHeaders {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		}
		if lctx.Reached {
			retry := int(time.Until(time.Unix(lctx.Reset, 0)).Seconds())
			if retry < 0 {
				retry = 0
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			msg := l.cfg.DenyMessage
			if msg == "" {
				msg = "Too Many Requests"
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) limiterFor(rateStr string) *limiter.Limiter {
	l.mu.RLock()
	lim, ok := l.limitersByRate[rateStr]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limitersByRate[rateStr]; ok {
		return lim
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		rate = limiter.Rate{Period: time.Second, Limit: 10}
	}
	lim = limiter.New(l.store, rate)
	l.limitersByRate[rateStr] = lim
	return lim
}

func (l *RateLimiter) rateFor(c *gin.Context) string {
	if l.cfg.PerRouteRates != nil {
		if full := c.FullPath(); full != "" {
			if r, ok := l.cfg.PerRouteRates[full]; ok && r != "" {
				return r
			}
		}
	}
	if l.cfg.Rate != "" {
		return l.cfg.Rate
	}
	return "10-S"
}

func (l *RateLimiter) skipped(fullPath, rawPath string) bool {
	p := fullPath
	if p == "" {
		p = rawPath
	}
	for _, pref := range l.cfg.SkipPaths {
		if pref != "" && strings.HasPrefix(p, pref) {
			return true
		}
	}
	return false
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	return strings.TrimPrefix(ip, "::ffff:")
}
