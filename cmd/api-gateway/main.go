package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-cohort-engine/api/swagger"
	"github.com/noah-isme/sma-cohort-engine/internal/handler"
	"github.com/noah-isme/sma-cohort-engine/internal/repository"
	"github.com/noah-isme/sma-cohort-engine/internal/service"
	"github.com/noah-isme/sma-cohort-engine/pkg/cache"
	"github.com/noah-isme/sma-cohort-engine/pkg/config"
	"github.com/noah-isme/sma-cohort-engine/pkg/database"
	"github.com/noah-isme/sma-cohort-engine/pkg/export"
	"github.com/noah-isme/sma-cohort-engine/pkg/jobs"
	"github.com/noah-isme/sma-cohort-engine/pkg/logger"
)

// @title SMA Cohort Engine API
// @version 1.0.0
// @description Academic calendar, roster and statistics service
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

	loc, err := time.LoadLocation(cfg.Engine.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid engine timezone", "timezone", cfg.Engine.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "driver", database.DriverName(cfg.Database), "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(nil, repository.DefaultCacheNamespace, logr)
	cacheEnabled := false
	client, err := cache.NewRedis(context.Background(), cfg.Redis)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logr.Info("redis disabled, dashboard cache off")
	case err != nil:
		logr.Warn("redis unavailable, dashboard cache off", zap.Error(err))
	default:
		cacheRepo = repository.NewCacheRepository(client, repository.DefaultCacheNamespace, logr)
		cacheEnabled = true
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheEnabled)

	cycles := repository.NewCycleRepository(db)
	offerings := repository.NewOfferingRepository(db)

	periods := service.NewPeriodService(cycles, loc, logr)
	roster := service.NewRosterService(
		repository.NewEnrollmentRepository(db),
		repository.NewSubgroupRepository(db),
		repository.NewRetakeRepository(db),
		offerings,
		logr,
	)
	attendance := service.NewAttendanceStatsService(repository.NewAttendanceRepository(db), service.AttendancePolicy{
		JustifiedCountsAsAbsence: cfg.Engine.JustifiedCountsAsAbsence,
		RegularMinPercentage:     cfg.Engine.RegularMinPercentage,
		AtRiskMinPercentage:      cfg.Engine.AtRiskMinPercentage,
		TopReasons:               cfg.Engine.TopReasons,
	}, logr)
	grades := service.NewGradeStatsService(repository.NewGradeRepository(db), logr)

	statistics := service.NewStatisticsService(service.StatisticsServiceParams{
		Snapshot:   repository.NewSnapshotter(db),
		Courses:    cycles,
		Offerings:  offerings,
		Periods:    periods,
		Roster:     roster,
		Attendance: attendance,
		Grades:     grades,
		Metrics:    metrics,
		Logger:     logr,
	})
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Statistics: statistics,
		Cache:      cacheSvc,
		Logger:     logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:              cfg.Dashboard.CacheTTL,
			SatisfactoryThreshold: cfg.Engine.SatisfactoryThreshold,
		},
	})

	refreshQueue := jobs.NewQueue("workload-refresh", dashboard.HandleRefreshJob, jobs.QueueConfig{
		Workers:    cfg.Dashboard.RefreshWorkers,
		MaxRetries: 2,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	refreshQueue.Start(context.Background())
	defer refreshQueue.Stop()
	dashboard.UseRefreshQueue(refreshQueue)
	metrics.TrackQueue("workload-refresh", refreshQueue.Stats)

	csvExporter := export.NewCSVExporter(export.WithDelimiter(cfg.Export.CSVDelimiter), export.WithBOM(cfg.Export.CSVBOM))

	r := newRouter(cfg, logr, routerDeps{
		tokens:     service.NewTokenVerifier(cfg.JWT.Secret),
		metrics:    metrics,
		periods:    handler.NewPeriodHandler(periods),
		rosters:    handler.NewRosterHandler(statistics),
		statistics: handler.NewStatisticsHandler(statistics, csvExporter, export.NewPDFExporter(), loc, cfg.Engine.ApprovalThreshold),
		dashboard:  handler.NewDashboardHandler(dashboard, loc),
		probes:     handler.NewMetricsHandler(metrics, db),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", loc.String())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
