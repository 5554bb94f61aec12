package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats returns the most recent stats snapshot
func (h *Handlers) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}

// RefreshStats recomputes the stats gauges immediately
func (h *Handlers) RefreshStats(c *gin.Context) {
	if err := h.stats.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stats_error",
			Message: "Failed to refresh stats",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, h.stats.Snapshot())
}
