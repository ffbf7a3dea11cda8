package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guji3/ping/pkg/cache"
)

// DedupConfig guards a route against rapid duplicate submissions, e.g. a
// double-pressed SOS button. The key function usually extracts the device
// serial; when it yields nothing, a body hash is used.
type DedupConfig struct {
	Window  time.Duration
	KeyFunc func(c *gin.Context) string
	Store   cache.Cache
}

// Dedup rejects a second request with the same key inside the window.
func Dedup(cfg DedupConfig) gin.HandlerFunc {
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Second
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewLocalCache(cache.LocalConfig{
			DefaultExpiration: cfg.Window,
			CleanupInterval:   time.Minute,
		})
	}
	return func(c *gin.Context) {
		var key string
		if cfg.KeyFunc != nil {
			key = strings.TrimSpace(cfg.KeyFunc(c))
		}
		if key == "" {
			b, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(strings.NewReader(string(b)))
			h := sha256.Sum256(b)
			key = hex.EncodeToString(h[:])
		}

		ok, err := cfg.Store.SetNX(c.Request.Context(), "dedup:"+key, 1, cfg.Window)
		if err != nil {
			// a broken dedup store must never block an emergency
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "duplicate alert"})
			return
		}
		c.Next()
	}
}
