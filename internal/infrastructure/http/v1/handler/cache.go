package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fischerwulf/map-dev/internal/infrastructure/http/v1/dto"
)

// CacheStats serves GET /cache/stats.
func (h *Handler) CacheStats(c *gin.Context) {
	l := loggerFrom(c)

	stats, err := h.tileUseCase.CacheStats()
	if err != nil {
		l.Error("failed to collect cache stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to collect cache stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// InvalidateCache serves DELETE /cache/:key. The literal key "all"
// wipes the entire cache.
func (h *Handler) InvalidateCache(c *gin.Context) {
	l := loggerFrom(c)

	key := c.Param("key")
	prefix := key
	if key == "all" {
		prefix = ""
	}

	count, err := h.tileUseCase.InvalidateCache(prefix)
	if err != nil {
		l.Error("cache invalidation failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "cache invalidation failed",
		})
		return
	}

	c.JSON(http.StatusOK, dto.InvalidateResponse{
		Invalidated: count,
		Key:         key,
	})
}
