package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	v1 "github.com/fischerwulf/map-dev/internal/infrastructure/http/v1"
	"github.com/fischerwulf/map-dev/internal/infrastructure/http/v1/handler"
	"github.com/fischerwulf/map-dev/internal/provider"
	"github.com/fischerwulf/map-dev/internal/repository/cache"
	"github.com/fischerwulf/map-dev/internal/repository/style"
	"github.com/fischerwulf/map-dev/internal/upstream"
	"github.com/fischerwulf/map-dev/internal/usecase"
	"github.com/fischerwulf/map-dev/pkg/config"
	"github.com/fischerwulf/map-dev/pkg/http_server"
	"github.com/fischerwulf/map-dev/pkg/logger"
	"github.com/fischerwulf/map-dev/pkg/telemetry"
)

func Run(cfg *config.Config) {
	l := logger.NewZapLogger(cfg.Logger.Level)
	defer l.Sync()

	l.Info("starting tile proxy", "cache_backend", cfg.Cache.Backend, "styles_dir", cfg.Styles.Dir)

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		}, l)
		if err != nil {
			l.Fatal("failed to initialize telemetry", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", "error", err)
			}
		}()
	}

	tileCache, err := newTileCache(cfg, l)
	if err != nil {
		l.Fatal("failed to initialize tile cache", "error", err)
	}

	authTable, err := provider.LoadAuthTable(cfg.Styles.SecretsFile, l)
	if err != nil {
		l.Fatal("failed to load provider auth table", "error", err)
	}

	validate := validator.New()
	styleRepository := style.NewRepository(cfg.Styles.Dir, validate)
	resolver := usecase.NewSourceResolver(styleRepository, authTable)
	fetcher := upstream.NewFetcher(cfg.Upstream.Timeout, l)

	tileUseCase := usecase.NewTileUseCase(tileCache, resolver, fetcher, cfg.Cache.TTL, l)
	styleUseCase := usecase.NewStyleUseCase(styleRepository, l)
	assetUseCase := usecase.NewAssetUseCase(resolver, fetcher, l)

	h := handler.NewHandler(validate, tileUseCase, styleUseCase, assetUseCase)
	router := v1.NewRouter(h, l, cfg.Telemetry.Enabled)

	server := http_server.NewServer(cfg.HTTP.Server, router)

	go func() {
		l.Info("starting http server", "port", cfg.HTTP.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		l.Fatal("server forced to shutdown", "error", err)
	}

	l.Info("server stopped")
}

func newTileCache(cfg *config.Config, l logger.Logger) (cache.TileCache, error) {
	switch cfg.Cache.Backend {
	case "filesystem":
		return cache.NewFilesystemCache(cfg.Cache.Dir, l)
	case "sqlite":
		return cache.NewSQLiteCache(cfg.Cache.SQLitePath, l)
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, l)
	case "memory":
		return cache.NewMapCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
