package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-cohort-engine/internal/handler"
	"github.com/noah-isme/sma-cohort-engine/internal/middleware"
	"github.com/noah-isme/sma-cohort-engine/internal/models"
	"github.com/noah-isme/sma-cohort-engine/internal/service"
	"github.com/noah-isme/sma-cohort-engine/pkg/config"
	"github.com/noah-isme/sma-cohort-engine/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-cohort-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-cohort-engine/pkg/middleware/requestid"
)

type routerDeps struct {
	tokens     middleware.TokenValidator
	metrics    *service.MetricsService
	periods    *handler.PeriodHandler
	rosters    *handler.RosterHandler
	statistics *handler.StatisticsHandler
	dashboard  *handler.DashboardHandler
	probes     *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.ResponseMeta())

	r.GET("/health", deps.probes.Health)
	r.GET("/ready", deps.probes.Ready)
	r.GET("/metrics", deps.probes.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens))

	api.GET("/periods/current", deps.periods.Current)
	api.GET("/periods/calendar", deps.periods.Calendar)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin, models.RoleTeacher)
	api.GET("/offerings/:id/roster", staff, deps.rosters.Offering)
	api.GET("/students/:id/offerings", middleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin), string(models.RoleTeacher), middleware.Self), deps.rosters.Student)

	admin := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	stats := api.Group("/statistics", admin)
	stats.GET("/offerings/:id", deps.statistics.Offering)
	stats.GET("/courses", deps.statistics.Cycle)
	stats.GET("/courses/:id", deps.statistics.Course)
	stats.GET("/courses/:id/export", deps.statistics.ExportCourse)
	api.GET("/attendance/courses/:id", admin, deps.statistics.CourseAttendance)

	if cfg.Dashboard.Enabled && deps.dashboard != nil {
		teacher := middleware.RequireRoles(models.RoleTeacher)
		api.GET("/dashboard/workload", teacher, deps.dashboard.Workload)
		api.POST("/dashboard/workload/refresh", teacher, deps.dashboard.Refresh)
	}
	return r
}
