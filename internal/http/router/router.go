// Package router assembles the gin engine from the wired modules.
package router

import (
	"net/http"
	"time"

	leadhandler "leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/webhook"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the handlers the router mounts.
type Deps struct {
	Config  config.HTTPConfig
	Logger  *logger.Logger
	Leads   *leadhandler.Handler
	Webhook *webhook.Handler
}

func New(deps Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(deps.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(deps.Config)))

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	intakeLimiter := httpkit.NewIntakeRateLimiter(deps.Logger)

	v1 := engine.Group("/api/v1")
	deps.Leads.RegisterRoutes(v1.Group("/leads"), intakeLimiter.RateLimit())
	v1.GET("/kpis", deps.Leads.KPIs)
	v1.POST("/webhooks/whatsapp-status", deps.Webhook.HandleWhatsAppStatus)

	return engine
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		// Credentialed wildcard responses are rejected by browsers.
		corsCfg.AllowCredentials = false
		return corsCfg
	}

	corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	return corsCfg
}
