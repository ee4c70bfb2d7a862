package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-console/api/swagger"
	"github.com/noah-isme/student-console/internal/client"
	"github.com/noah-isme/student-console/internal/handler"
	"github.com/noah-isme/student-console/internal/middleware"
	"github.com/noah-isme/student-console/internal/models"
	"github.com/noah-isme/student-console/internal/service"
	"github.com/noah-isme/student-console/internal/session"
	"github.com/noah-isme/student-console/internal/view"
	"github.com/noah-isme/student-console/internal/web"
	"github.com/noah-isme/student-console/pkg/cache"
	"github.com/noah-isme/student-console/pkg/config"
	"github.com/noah-isme/student-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-console/pkg/middleware/requestid"
)

// @title Student Console
// @version 0.1.0
// @description Server-rendered student management screen backed by the remote student API
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	api := client.NewStudentClient(client.Options{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout,
		InsecureSkipVerify: cfg.API.InsecureSkipVerify,
		Metrics:            metrics,
		Logger:             logr,
	})

	checks := map[string]handler.ReadinessCheck{}
	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Backend == config.SessionBackendRedis {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		redisStore := session.NewRedisStore(rdb)
		defer redisStore.Close() //nolint:errcheck
		store = redisStore
		checks["redis"] = handler.ReadinessCheck(cache.Ping(rdb))
	}

	validate := models.NewFormValidator()
	registry := session.NewRegistry(store, func(flash *view.Flash) *view.Controller {
		return view.NewController(api, flash, validate, logr)
	}, cfg.Session.TTL, metrics, logr)
	go registry.Run(ctx, cfg.Session.JanitorInterval)

	var exports *service.ExportService
	if cfg.Exports.Enabled {
		exports = service.NewExportService()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.SetHTMLTemplate(web.Templates())

	handler.RegisterOpsRoutes(r, handler.NewMetricsHandler(metrics, checks), cfg.Metrics.Enabled)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	console := r.Group("/")
	console.Use(middleware.Session(cfg.Session))
	handler.RegisterRoutes(console, handler.NewConsoleHandler(registry, exports, logr))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Warn("graceful shutdown failed", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "api", cfg.API.BaseURL, "session_backend", cfg.Session.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
	logr.Info("server stopped")
}
