package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/saberes-app/gradebook-api/api/swagger"
	"github.com/saberes-app/gradebook-api/internal/handler"
	"github.com/saberes-app/gradebook-api/internal/middleware"
	"github.com/saberes-app/gradebook-api/internal/models"
	"github.com/saberes-app/gradebook-api/internal/repository"
	"github.com/saberes-app/gradebook-api/internal/service"
	"github.com/saberes-app/gradebook-api/pkg/cache"
	"github.com/saberes-app/gradebook-api/pkg/config"
	"github.com/saberes-app/gradebook-api/pkg/database"
	"github.com/saberes-app/gradebook-api/pkg/jobs"
	"github.com/saberes-app/gradebook-api/pkg/logger"
	corsmiddleware "github.com/saberes-app/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/saberes-app/gradebook-api/pkg/middleware/requestid"
	"github.com/saberes-app/gradebook-api/pkg/storage"
)

// @title Saberes Gradebook API
// @version 1.0.0
// @description Gradesheet scoring, autosave sync and edit-window management
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, snapshot cache disabled", "error", err)
		redisClient = nil
	}

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	gradesheetRepo := repository.NewGradesheetRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	computedRepo := repository.NewComputedScoreRepository(db)
	grantRepo := repository.NewEditGrantRepository(db)
	requestRepo := repository.NewEditRequestRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})

	gradebookSvc := service.NewGradebookService(service.GradebookServiceDeps{
		Gradesheets: gradesheetRepo,
		Scores:      scoreRepo,
		Computed:    computedRepo,
		Roster:      enrollmentRepo,
		Periods:     periodRepo,
		Assignments: assignmentRepo,
		Grants:      grantRepo,
		Cache:       cacheRepo,
		Validator:   validate,
		Logger:      logr,
		SnapshotTTL: cfg.Gradebook.SnapshotTTL,
	})

	recalcQueue := jobs.NewQueue("recalc", gradebookSvc.HandleRecalcJob, jobs.QueueConfig{
		Workers:    cfg.Recalc.Workers,
		MaxRetries: cfg.Recalc.MaxRetries,
		RetryDelay: cfg.Recalc.RetryDelay,
		Logger:     logr,
	})
	gradebookSvc.AttachQueue(recalcQueue)

	grantSvc := service.NewEditGrantService(grantRepo, requestRepo, periodRepo, assignmentRepo, validate, logr)

	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(gradebookSvc, exportStorage, signer, cfg.PublicBaseURL, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	gradebookHandler := handler.NewGradebookHandler(gradebookSvc, metricsSvc)
	grantHandler := handler.NewEditGrantHandler(grantSvc)
	exportHandler := handler.NewExportHandler(exportSvc, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/exports/download", exportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/gradebook", gradebookHandler.Snapshot)
		authed.POST("/gradebook/scores/bulk", gradebookHandler.BulkScores)
		authed.POST("/gradebook/activity-scores/bulk", gradebookHandler.BulkActivityScores)
		authed.POST("/gradebook/recalculate", gradebookHandler.Recalculate)

		authed.GET("/edit-grants/mine", grantHandler.MyGrants)
		authed.GET("/edit-requests", grantHandler.ListRequests)
		authed.POST("/edit-requests", grantHandler.CreateRequest)

		admin := authed.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.POST("/edit-requests/:id/approve", grantHandler.Approve)
			admin.POST("/edit-requests/:id/reject", grantHandler.Reject)
		}

		authed.GET("/gradebook/export", exportHandler.Export)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recalcQueue.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown", "error", err)
	}
	recalcQueue.Stop()
	cacheRepo.Close() //nolint:errcheck
}
