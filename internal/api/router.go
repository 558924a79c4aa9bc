package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"meal-export-backend/config"
	"meal-export-backend/internal/mw"
	"meal-export-backend/web"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.New()
	r.Use(mw.RequestLogger(), gin.Recovery(), mw.CORS(cfg.CORSAllowOrigins, OutcomeHeader))
	if cfg.RequestIPHeader != "" {
		r.RemoteIPHeaders = []string{cfg.RequestIPHeader}
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	var cacheStore *cache.Cache
	if ttl > 0 {
		cacheStore = cache.New(ttl, 2*ttl)
	}
	caching := mw.Cache(cacheStore, ttl)

	r.GET("/healthz", Healthz)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/meal", caching, handler.GetMeal)
		api.GET("/meal/reshaped", caching, handler.GetReshapedMeal)
		api.GET("/meal/download", caching, handler.DownloadMeal)
		api.GET("/history", handler.GetHistory)
	}

	index := web.Index()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	assets := http.FS(web.FS())
	r.StaticFileFS("/app.js", "app.js", assets)
	r.StaticFileFS("/style.css", "style.css", assets)

	return r
}
