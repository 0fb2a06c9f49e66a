package main

import (
	stdlog "log"

	handlers "RoadPulse/internal/handler"
	"RoadPulse/internal/models"
	"RoadPulse/internal/sweeper"
	"RoadPulse/pkg/cache"
	"RoadPulse/pkg/config"
	"RoadPulse/pkg/database"
	"RoadPulse/pkg/logger"
	"RoadPulse/pkg/metrics"
	"RoadPulse/pkg/middleware"
	"RoadPulse/pkg/scheduler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Log)
	defer log.Sync()

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// A dead store must not take the proxy and resolver endpoints down
	// with it; they answer from upstreams only.
	db, err := database.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Warn("store unavailable, continuing without it", zap.Error(err))
		db = nil
	} else if err := models.AutoMigrate(db); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}

	store, err := cache.NewCache(cfg.Cache)
	if err != nil {
		log.Warn("configured cache unavailable, using local cache", zap.Error(err))
		store = cache.NewLocalCache(cfg.Cache.Local)
	}
	defer store.Close()

	m := metrics.New()

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.CORS(), middleware.AccessLog(log), m.Middleware())

	h := handlers.New(db, cfg, store, log)
	h.Register(engine, m)

	if db != nil {
		cr := scheduler.NewCron(nil)
		job := sweeper.New(db, cfg.AlertTTL, cfg.PositionTTL, log)
		if _, err := cr.Add(cfg.SweepSchedule, job); err != nil {
			log.Warn("failed to schedule sweep", zap.Error(err))
		}
		cr.Start()
		defer cr.Stop()
	}

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := engine.Run(cfg.Addr); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
