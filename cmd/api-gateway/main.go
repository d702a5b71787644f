package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/virtual-classroom-api/api/swagger"
	"github.com/noah-isme/virtual-classroom-api/internal/handler"
	"github.com/noah-isme/virtual-classroom-api/internal/middleware"
	"github.com/noah-isme/virtual-classroom-api/internal/models"
	"github.com/noah-isme/virtual-classroom-api/internal/repository"
	"github.com/noah-isme/virtual-classroom-api/internal/service"
	"github.com/noah-isme/virtual-classroom-api/pkg/cache"
	"github.com/noah-isme/virtual-classroom-api/pkg/config"
	"github.com/noah-isme/virtual-classroom-api/pkg/database"
	"github.com/noah-isme/virtual-classroom-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/virtual-classroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/virtual-classroom-api/pkg/middleware/requestid"
)

// @title Virtual Classroom API
// @version 1.0.0
// @description Assignment and submission management for tutors and students
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			cacheService = service.NewCacheService(nil, metricsService, cfg.Cache.TTL, logr, false)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
		}
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Cache.TTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Lifetime: cfg.JWT.Lifetime,
	}, time.Now)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, cacheService, nil, logr, time.Now)
	listingService := service.NewListingService(assignmentRepo, submissionRepo, cacheService, logr, time.Now)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, nil, logr, time.Now)
	reportService := service.NewReportService(assignmentRepo, submissionRepo, logr, time.Now)

	authHandler := handler.NewAuthHandler(authService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, listingService, submissionService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.GET("/assignments",
			middleware.RequireRoles(models.RoleTutor, models.RoleStudent), assignmentHandler.List)
		protected.GET("/assignments/:id",
			middleware.RequireRoles(models.RoleTutor, models.RoleStudent), assignmentHandler.Get)
		protected.POST("/assignments",
			middleware.RequireRoles(models.RoleTutor), assignmentHandler.Create)
		protected.PUT("/assignments/:id",
			middleware.RequireRoles(models.RoleTutor), assignmentHandler.Update)
		protected.DELETE("/assignments/:id",
			middleware.RequireRoles(models.RoleTutor), assignmentHandler.Delete)
		protected.POST("/assignments/:id/submissions",
			middleware.RequireRoles(models.RoleStudent), submissionHandler.Submit)
		protected.GET("/assignments/:id/export",
			middleware.RequireRoles(models.RoleTutor), reportHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
