package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fischerwulf/map-dev/internal/upstream"
	"github.com/fischerwulf/map-dev/internal/usecase"
	"github.com/fischerwulf/map-dev/pkg/logger"
)

type Handler struct {
	validate     *validator.Validate
	tileUseCase  *usecase.TileUseCase
	styleUseCase *usecase.StyleUseCase
	assetUseCase *usecase.AssetUseCase
}

func NewHandler(v *validator.Validate, tile *usecase.TileUseCase, style *usecase.StyleUseCase, asset *usecase.AssetUseCase) *Handler {
	return &Handler{
		validate:     v,
		tileUseCase:  tile,
		styleUseCase: style,
		assetUseCase: asset,
	}
}

func loggerFrom(c *gin.Context) logger.Logger {
	if log, ok := c.Get("logger"); ok {
		if l, ok := log.(logger.Logger); ok {
			return l
		}
	}
	return logger.NewNoOp()
}

// respondProxyError maps the error taxonomy onto HTTP statuses: unknown
// style/source is 404, an upstream status is passed through, transport
// failures become 502.
func respondProxyError(c *gin.Context, l logger.Logger, err error) {
	if errors.Is(err, usecase.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	var upstreamErr *upstream.UpstreamError
	if errors.As(err, &upstreamErr) {
		status := upstreamErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	var transportErr *upstream.TransportError
	if errors.As(err, &transportErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
		})
		return
	}

	l.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "the server encountered an error and could not process your request",
	})
}
