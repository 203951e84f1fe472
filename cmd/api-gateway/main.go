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

	_ "github.com/filmflow/shootplan-api/api/swagger"
	"github.com/filmflow/shootplan-api/internal/handler"
	internalmiddleware "github.com/filmflow/shootplan-api/internal/middleware"
	"github.com/filmflow/shootplan-api/internal/optimizer"
	"github.com/filmflow/shootplan-api/internal/repository"
	"github.com/filmflow/shootplan-api/internal/service"
	"github.com/filmflow/shootplan-api/internal/weather"
	"github.com/filmflow/shootplan-api/pkg/cache"
	"github.com/filmflow/shootplan-api/pkg/config"
	"github.com/filmflow/shootplan-api/pkg/database"
	"github.com/filmflow/shootplan-api/pkg/logger"
	corsmiddleware "github.com/filmflow/shootplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/filmflow/shootplan-api/pkg/middleware/requestid"
)

// @title ShootPlan API
// @version 1.0.0
// @description Shoot-day scheduling optimizer for film productions
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The run cache is a resilience layer, not a dependency.
		logr.Sugar().Warnw("redis unavailable, run results held in memory only", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}
	runCache := service.NewRedisRunCache(redisClient, cfg.Runs.ResultCacheTTL, metrics, logr)

	sceneRepo := repository.NewSceneRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	dayRepo := repository.NewShootingDayRepository(db)
	historyRepo := repository.NewDurationHistoryRepository(db)

	var forecast weather.Provider
	switch cfg.Weather.Provider {
	case "http":
		forecast = weather.NewHTTPProvider(cfg.Weather.BaseURL, cfg.Weather.Timeout)
	default:
		forecast = weather.NewStaticProvider(nil)
	}

	engine := optimizer.New(
		optimizer.PredictorWeights{
			MinutesPerPage:   cfg.Predictor.MinutesPerPage,
			ExteriorMinutes:  cfg.Predictor.ExteriorMinutes,
			NightMinutes:     cfg.Predictor.NightMinutes,
			MinutesPerCast:   cfg.Predictor.MinutesPerCast,
			MinutesPerShot:   cfg.Predictor.MinutesPerShot,
			DefaultShotCount: cfg.Predictor.DefaultShotCount,
			ConfidencePct:    int(cfg.Predictor.ConfidencePct),
		},
		optimizer.OrderWeights{
			GoodWeatherBonus:  cfg.Order.GoodWeatherBonus,
			SharedCastBonus:   cfg.Order.SharedCastBonus,
			SameLocationBonus: cfg.Order.SameLocationBonus,
		},
		logr,
	)

	optimizeSvc := service.NewOptimizeService(
		sceneRepo, locationRepo, availabilityRepo, dayRepo, db,
		forecast, repository.BlockedOffsets,
		engine, runCache, metrics,
		cfg.Optimizer, cfg.Runs, nil, logr,
	)
	shootingDaySvc := service.NewShootingDayService(dayRepo, sceneRepo, historyRepo, nil, logr)

	optimizeHandler := handler.NewOptimizeHandler(optimizeSvc)
	shootingDayHandler := handler.NewShootingDayHandler(shootingDaySvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/schedule/optimize", optimizeHandler.Submit)
		api.GET("/schedule/optimize/:id", optimizeHandler.Get)
		api.DELETE("/schedule/optimize/:id", optimizeHandler.Cancel)
		api.POST("/schedule/optimize/:id/save", optimizeHandler.Save)
		api.GET("/schedule/optimize/:id/export", optimizeHandler.Export)
		api.POST("/schedule/predict-duration", optimizeHandler.PredictDuration)
		api.POST("/schedule/scene-order", optimizeHandler.SceneOrder)
		api.GET("/shooting-days", shootingDayHandler.List)
		api.GET("/shooting-days/:id", shootingDayHandler.Get)
		api.GET("/shooting-days/:id/scenes", shootingDayHandler.Scenes)
		api.POST("/shooting-days/:id/scenes/:sceneId/actual", shootingDayHandler.RecordActual)
		api.GET("/duration-history", shootingDayHandler.History)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	optimizeSvc.Start(ctx)
	defer optimizeSvc.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
