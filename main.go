package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rescuelink/api-go/config"
	"github.com/rescuelink/api-go/logger"
	"github.com/rescuelink/api-go/middleware"
	"github.com/rescuelink/api-go/routes"
	"github.com/rescuelink/api-go/storage"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer zap.L().Sync()

	db, err := config.InitDB(cfg)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.Error(err))
	}

	photos := storage.NewPhotoStore(cfg)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.NewHTTPMetrics(cfg.ServiceName).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRoutes(r, db, cfg, photos)

	zap.L().Info("starting server",
		zap.String("service", cfg.ServiceName),
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Env),
	)
	if err := r.Run(":" + cfg.Port); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
