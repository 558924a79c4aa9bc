package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"meal-export-backend/internal/model"
)

// GetHistory handles GET /api/history, listing the most recent gateway calls.
func (h *Handler) GetHistory(c *gin.Context) {
	if !h.store.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "fetch history is disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	entries, err := h.store.RecentFetches(c.Request.Context(), limit)
	if err != nil {
		log.WithError(err).Error("failed to read fetch history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		return
	}
	if entries == nil {
		entries = []model.FetchLog{}
	}
	c.JSON(http.StatusOK, entries)
}

// Healthz reports liveness without touching the upstream.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
