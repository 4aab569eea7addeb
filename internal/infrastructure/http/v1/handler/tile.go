package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fischerwulf/map-dev/internal/repository/cache"
)

const tileCacheControl = "public, max-age=86400"

// Tile serves GET /tiles/:style/:source/:z/:x/:file where file is
// "{y}.{ext}" with ext one of pbf, png, webp.
func (h *Handler) Tile(c *gin.Context) {
	l := loggerFrom(c)

	z, err := strconv.Atoi(c.Param("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "z should be integer",
		})
		return
	}

	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "x should be integer",
		})
		return
	}

	file := c.Param("file")
	dot := strings.LastIndex(file, ".")
	if dot <= 0 || dot == len(file)-1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "tile file should be {y}.{ext}",
		})
		return
	}

	y, err := strconv.Atoi(file[:dot])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "y should be integer",
		})
		return
	}

	format, err := cache.ParseFormat(file[dot+1:])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	styleName := c.Param("style")
	sourceName := c.Param("source")

	result, err := h.tileUseCase.GetTile(c.Request.Context(), styleName, sourceName, z, x, y, format)
	if err != nil {
		respondProxyError(c, l, err)
		return
	}

	c.Header("X-Cache", result.CacheStatus)
	c.Header("Cache-Control", tileCacheControl)
	for k, v := range result.Headers {
		c.Header(k, v)
	}

	c.Data(http.StatusOK, result.ContentType, result.Data)
}
