package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const assetCacheControl = "public, max-age=86400"

// Sprite serves GET /sprites/:sprite where sprite is
// "{style}[@2x][.json|.png]".
func (h *Handler) Sprite(c *gin.Context) {
	l := loggerFrom(c)

	result, err := h.assetUseCase.GetSprite(c.Request.Context(), c.Param("sprite"))
	if err != nil {
		respondProxyError(c, l, err)
		return
	}

	c.Header("Cache-Control", assetCacheControl)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Glyphs serves GET /glyphs/:style/:fontstack/:range.
func (h *Handler) Glyphs(c *gin.Context) {
	l := loggerFrom(c)

	result, err := h.assetUseCase.GetGlyphs(c.Request.Context(),
		c.Param("style"), c.Param("fontstack"), c.Param("range"))
	if err != nil {
		respondProxyError(c, l, err)
		return
	}

	c.Header("Cache-Control", assetCacheControl)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
