package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guji3/ping/pkg/auth"
	"github.com/guji3/ping/pkg/cache"
	"github.com/guji3/ping/pkg/metrics"
	"github.com/guji3/ping/pkg/middleware"
)

// RouterOptions tunes the HTTP surface around the handlers.
type RouterOptions struct {
	Mode        string // gin mode: debug, release, test
	RateLimit   string // ulule formatted rate for /api/auth, e.g. "60-M"
	DedupWindow time.Duration // 0 disables duplicate-alert suppression
	DedupStore  cache.Cache
}

// NewRouter wires every route. The alert intake is deliberately outside
// the JWT group: devices authenticate by serial, not by token.
func NewRouter(h *Handlers, jwtMgr *auth.Manager, opts RouterOptions) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())
	r.MaxMultipartMemory = maxAudioBytes

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if opts.RateLimit != "" {
		rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:       opts.RateLimit,
			AddHeaders: true,
		}, nil)
		authGroup.Use(rl.Middleware())
	}
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	alert := api.Group("/emergency")
	if opts.DedupWindow > 0 {
		alert.Use(middleware.Dedup(middleware.DedupConfig{
			Window: opts.DedupWindow,
			Store:  opts.DedupStore,
			KeyFunc: func(c *gin.Context) string {
				if s := c.PostForm("deviceSerial"); s != "" {
					return "device:" + s
				}
				return ""
			},
		}))
	}
	alert.POST("/alert", h.Alert)
	alert.POST("/test-alert", h.TestAlert)
	alert.GET("/status/:logId", h.Status)

	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtMgr))
	{
		protected.GET("/users/me", h.Me)
		protected.PUT("/users/me/device", h.UpdateDevice)

		protected.POST("/contacts", h.AddContact)
		protected.GET("/contacts", h.ListContacts)
		protected.PUT("/contacts/reorder", h.ReorderContacts)
		protected.PUT("/contacts/:id", h.UpdateContact)
		protected.DELETE("/contacts/:id", h.DeleteContact)

		protected.GET("/logs", h.History)
		protected.GET("/logs/recent-count", h.RecentCount)
		protected.GET("/logs/:id", h.LogDetail)
	}

	return r
}
