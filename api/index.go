package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arnavshah/vetclinic-scheduler-api/internal/app"
	"github.com/arnavshah/vetclinic-scheduler-api/internal/config"
	"github.com/arnavshah/vetclinic-scheduler-api/internal/logging"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Must("production", "info").Fatal("could not load config", zap.Error(err))
	}
	logger := logging.Must(cfg.Env, cfg.LogLevel)

	gin.SetMode(gin.ReleaseMode)
	a, err := app.New(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.Fatal("could not start", zap.Error(err))
	}
	r = a.Router
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
