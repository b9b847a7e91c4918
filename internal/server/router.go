// Package server exposes the tracker over a loopback HTTP API.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/blackwell-systems/workclock/internal/logging"
)

type RouterConfig struct {
	Logger       *logging.Logger
	AllowOrigins []string

	SessionHandler  *SessionHandler
	SettingsHandler *SettingsHandler
	UsageHandler    *UsageHandler
	ReportHandler   *ReportHandler
	HealthHandler   *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Logger))
	if len(cfg.AllowOrigins) > 0 {
		r.Use(CORS(cfg.AllowOrigins))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Sessions
	if cfg.SessionHandler != nil {
		r.POST("/start", cfg.SessionHandler.Start)
		r.POST("/pause", cfg.SessionHandler.Pause)
		r.POST("/stop", cfg.SessionHandler.Stop)
		r.POST("/event", cfg.SessionHandler.Event)
		r.GET("/status", cfg.SessionHandler.Status)
	}

	// Settings
	if cfg.SettingsHandler != nil {
		r.GET("/settings", cfg.SettingsHandler.Get)
		r.POST("/settings", cfg.SettingsHandler.Update)
	}

	// App usage
	if cfg.UsageHandler != nil {
		r.POST("/heartbeat", cfg.UsageHandler.Heartbeat)
		r.GET("/app-usage", cfg.UsageHandler.AppUsage)
		r.GET("/app-usage-categories", cfg.UsageHandler.Categories)
		r.GET("/today-apps", cfg.UsageHandler.TodayApps)
	}

	// Reports
	if cfg.ReportHandler != nil {
		r.GET("/reports", cfg.ReportHandler.Reports)
		r.GET("/today-events", cfg.ReportHandler.TodayEvents)
	}

	return r
}
