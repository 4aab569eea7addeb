package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Styles serves GET /styles.
func (h *Handler) Styles(c *gin.Context) {
	c.JSON(http.StatusOK, h.styleUseCase.ListStyles())
}

// Style serves GET /styles/:name with proxy URLs rebased onto the
// origin the client reached us on.
func (h *Handler) Style(c *gin.Context) {
	l := loggerFrom(c)

	baseURL := baseURLFor(c)

	result, err := h.styleUseCase.GetStyle(c.Param("name"), baseURL)
	if err != nil {
		respondProxyError(c, l, err)
		return
	}

	if result.NoStore {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
	}

	c.Data(http.StatusOK, "application/json", result.Data)
}

func baseURLFor(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + c.Request.Host
}
