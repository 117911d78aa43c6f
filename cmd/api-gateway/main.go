package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-scheduler-api/api/swagger"
	"github.com/noah-isme/exam-scheduler-api/internal/handler"
	"github.com/noah-isme/exam-scheduler-api/internal/repository"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	"github.com/noah-isme/exam-scheduler-api/pkg/cache"
	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	"github.com/noah-isme/exam-scheduler-api/pkg/database"
	"github.com/noah-isme/exam-scheduler-api/pkg/export"
	"github.com/noah-isme/exam-scheduler-api/pkg/feedtoken"
	"github.com/noah-isme/exam-scheduler-api/pkg/logger"
)

// @title Exam Scheduler API
// @version 1.0.0
// @description Automatic exam scheduling and conflict auditing for university timetables.
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Migrations.Enabled {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Conflicts.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("redis unavailable, conflict cache disabled", zap.Error(err))
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Conflicts.CacheTTL, logr, cfg.Conflicts.CacheEnabled && redisClient != nil)

	stores := service.Stores{
		Courses:     repository.NewCourseRepository(db),
		Instructors: repository.NewInstructorRepository(db),
		Rooms:       repository.NewRoomRepository(db),
		Students:    repository.NewStudentRepository(db),
		Exams:       repository.NewExamRepository(db),
		Gate:        &service.WriteGate{},
	}

	conflictSvc := service.NewConflictService(stores, cacheSvc, metrics, cfg.Conflicts.CacheTTL, logr)
	catalogSvc := service.NewCatalogService(stores, cacheSvc, validate, logr)
	schedulingSvc := service.NewSchedulingService(stores, conflictSvc, metrics, validate, logr, service.SchedulingConfig{
		MidtermStartWeek: cfg.Scheduler.MidtermStartWeek,
		FinalStartWeek:   cfg.Scheduler.FinalStartWeek,
		MidtermWeeks:     cfg.Scheduler.MidtermWeeks,
		FinalWeeks:       cfg.Scheduler.FinalWeeks,
		DefaultMaxLoad:   cfg.Scheduler.DefaultMaxLoad,
		SnugMargin:       cfg.Scheduler.SnugMargin,
	})
	jobSvc := service.NewScheduleJobService(schedulingSvc, service.ScheduleJobConfig{
		Buffer:    cfg.Scheduler.JobBuffer,
		Retention: cfg.Scheduler.JobRetention,
	}, logr)
	exportSvc := service.NewExportService(catalogSvc, conflictSvc, export.NewRegistry(), export.NewICSExporter(), logr)
	importSvc := service.NewImportService(catalogSvc, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            tokenIssuer,
	})

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	router := newRouter(cfg, logr, routeDeps{
		auth:       authSvc,
		metrics:    metrics,
		catalog:    handler.NewCatalogHandler(catalogSvc),
		schedule:   handler.NewScheduleHandler(schedulingSvc, jobSvc, logr),
		conflicts:  handler.NewConflictHandler(conflictSvc),
		exports:    handler.NewExportHandler(exportSvc, validate),
		imports:    handler.NewImportHandler(importSvc),
		feeds:      handler.NewFeedHandler(feedtoken.NewSigner(cfg.Feeds.Secret, cfg.Feeds.TTL), exportSvc, "/"),
		monitoring: handler.NewMetricsHandler(metrics, checks),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobSvc.Start(ctx)
	defer jobSvc.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
