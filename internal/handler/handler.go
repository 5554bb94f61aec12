package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mail-beacon-go/internal/config"
	metricsPkg "mail-beacon-go/internal/metrics"
	"mail-beacon-go/internal/repository"
	"mail-beacon-go/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db       *gorm.DB
	messages *repository.Messages
	adsRepo  *repository.Ads
	threads  *service.Threads
	recorder *service.OpenRecorder
	ads      *service.AdAllocator
	stats    *service.StatsRefresher
	metrics  *metricsPkg.Metrics
	tracking config.TrackingConfig
}

// NewHandlers creates new HTTP handlers
func NewHandlers(
	db *gorm.DB,
	messages *repository.Messages,
	adsRepo *repository.Ads,
	threads *service.Threads,
	recorder *service.OpenRecorder,
	ads *service.AdAllocator,
	stats *service.StatsRefresher,
	metrics *metricsPkg.Metrics,
	tracking config.TrackingConfig,
) *Handlers {
	return &Handlers{
		db:       db,
		messages: messages,
		adsRepo:  adsRepo,
		threads:  threads,
		recorder: recorder,
		ads:      ads,
		stats:    stats,
		metrics:  metrics,
		tracking: tracking,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The pixel sits outside the API group: mail clients fetch it
	// with nothing but the id.
	router.GET("/p/:id", h.Pixel)

	api := router.Group("/api/v1")
	{
		api.POST("/messages", h.RegisterMessage)
		api.GET("/messages/status", h.MessageStatus)

		api.GET("/ads", h.GetAds)
		api.POST("/ads", h.CreateAd)
		api.GET("/ads/serve", h.ServeAd)
		api.GET("/ads/:id", h.GetAd)
		api.PUT("/ads/:id", h.UpdateAd)
		api.DELETE("/ads/:id", h.DeleteAd)
		api.PATCH("/ads/:id/enable", h.EnableAd)
		api.PATCH("/ads/:id/disable", h.DisableAd)
		api.POST("/ads/:id/reset", h.ResetAdViews)

		api.GET("/users", h.GetUsers)
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)
		api.DELETE("/users/:id", h.DeleteUser)

		api.GET("/vouchers", h.GetVouchers)
		api.POST("/vouchers", h.CreateVoucher)
		api.POST("/vouchers/:code/redeem", h.RedeemVoucher)

		api.GET("/stats", h.GetStats)
		api.POST("/stats/refresh", h.RefreshStats)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Metrics:   make(map[string]string),
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.stats.IsRunning() {
		response.Metrics["stats_refresher"] = "running"
	} else {
		response.Metrics["stats_refresher"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
