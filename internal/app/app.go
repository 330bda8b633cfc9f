// Package app assembles the HTTP service from configuration. The long-running
// server and the serverless entry point share it.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/internal/config"
	"github.com/arnavshah/vetclinic-scheduler-api/internal/metrics"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/auth"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/cache"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/database"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/handlers"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/scheduler"
)

// App is a wired service ready to serve
type App struct {
	Router  *gin.Engine
	Handler *handlers.Handler

	closers []func() error
}

// New opens the database, ensures the admin account, connects the optional
// cache and registers every route. Scheduler metrics are registered on
// registry and served from /metrics.
func New(cfg *config.Config, logger *zap.Logger, registry *prometheus.Registry) (*App, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.JWTSecret == "" || cfg.APIMasterSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET and API_MASTER_SECRET are required in production")
		}
		logger.Warn("JWT_SECRET or API_MASTER_SECRET is empty; tokens and keys are not secure")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, err
	}
	a := &App{}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.APIMasterSecret)
	if err := authenticator.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	h := &handlers.Handler{
		DB:        db,
		Auth:      authenticator,
		Scheduler: scheduler.NewScheduler(nil),
		Bookings:  database.NewScheduleStore(db, loc, logger),
		Staff:     database.NewStaffStore(db),
		Metrics:   metrics.NewSchedulerMetrics(registry),
		Limiter:   handlers.NewKeyLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:    logger,
		Location:  loc,
	}
	if cfg.ScoreAdjustments {
		h.Adjustments = scheduler.DefaultAdjustments
	}

	if cfg.RedisAddr != "" {
		rc, err := cache.New(cache.Config{
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			TTL:           cfg.CacheTTL(),
		}, logger)
		if err != nil {
			// the service still works without a cache
			logger.Warn("suggestion cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			h.Cache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.RequestLogger(logger), gin.Recovery())

	h.Register(r, registry)

	a.Router = r
	a.Handler = h
	return a, nil
}

// Close releases the cache and database connections
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
