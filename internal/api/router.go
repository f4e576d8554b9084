// internal/api/router.go
package api

import (
	"time"

	commonhttp "site-composer/internal/common/http"
	"site-composer/internal/common/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName    string
	VariantHandler *VariantHandler
	SectionHandler *SectionHandler
	HealthHandler  *HealthHandler
	Logger         logger.Logger
	AllowOrigins   []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if cfg.Logger != nil {
		r.Use(commonhttp.RequestLog(cfg.Logger))
	}
	r.Use(commonhttp.Metrics())
	r.Use(commonhttp.CORS(cfg.AllowOrigins))
	r.Use(commonhttp.RequestTimeout(cfg.RequestTimeout))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	site := r.Group("/api/sites/:siteId")
	{
		if cfg.VariantHandler != nil {
			site.POST("/variants/recommend", cfg.VariantHandler.Recommend)
			site.GET("/variants", cfg.VariantHandler.List)
			site.PATCH("/variants", cfg.VariantHandler.Switch)
			site.GET("/variants/overrides/stats", cfg.VariantHandler.OverrideStats)
		}

		if cfg.SectionHandler != nil {
			site.POST("/sections", cfg.SectionHandler.Add)
			site.DELETE("/sections/:sectionId", cfg.SectionHandler.Delete)
			site.PUT("/sections/order", cfg.SectionHandler.Reorder)
		}
	}

	return r
}
