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
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-portal-api/api/swagger"
	"github.com/noah-isme/faculty-portal-api/internal/handler"
	"github.com/noah-isme/faculty-portal-api/internal/repository"
	"github.com/noah-isme/faculty-portal-api/internal/router"
	"github.com/noah-isme/faculty-portal-api/internal/service"
	"github.com/noah-isme/faculty-portal-api/pkg/cache"
	"github.com/noah-isme/faculty-portal-api/pkg/config"
	"github.com/noah-isme/faculty-portal-api/pkg/database"
	"github.com/noah-isme/faculty-portal-api/pkg/export"
	"github.com/noah-isme/faculty-portal-api/pkg/jobs"
	"github.com/noah-isme/faculty-portal-api/pkg/logger"
	"github.com/noah-isme/faculty-portal-api/pkg/mailer"
)

// @title Faculty Portal API
// @version 1.0.0
// @description Faculty accounts, task assignment, leave workflow and reports
// @BasePath /api
// @schemes http https
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(db.DB, logr); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	validate := validator.New()

	mail, err := mailer.New(cfg.Mail, cfg.AppName, logr)
	if err != nil {
		return err
	}
	dispatcher := mailer.NewDispatcher(mail, jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.Retries,
		RetryDelay: 2 * time.Second,
		Logger:     logr.Named("mail"),
	})
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()
	metrics.RegisterQueue("mail", dispatcher.Stats)

	accountRepo := repository.NewAccountRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "faculty_portal")

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Directory.CacheTTL, logr, redisClient != nil)
	directorySvc := service.NewDirectoryService(accountRepo, cacheSvc, cfg.Directory.CacheTTL)
	notifier := service.NewNotificationService(dispatcher, cfg.AppName)

	authSvc := service.NewAuthService(accountRepo, auditRepo, directorySvc, metrics, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	accountSvc := service.NewAccountService(accountRepo, auditRepo, directorySvc, notifier, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, accountRepo, auditRepo, metrics, validate, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, accountRepo, auditRepo, notifier, metrics, validate, logr)
	reportSvc := service.NewReportService(service.ReportServiceDeps{
		Accounts: accountRepo,
		Tasks:    taskRepo,
		Leaves:   leaveRepo,
		PDF:      export.NewPDFExporter(),
		CSV:      export.NewCSVExporter(export.WithCRLF()),
		Audit:    auditRepo,
		Metrics:  metrics,
		Logger:   logr,
	})

	checks := map[string]handler.HealthCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["cache"] = cacheRepo.Ping
	}

	engine := router.Setup(router.Deps{
		Config:   cfg,
		Logger:   logr,
		Verifier: authSvc,
		Limiter:  cache.NewRateLimiter(redisClient, "faculty_portal:rate"),
		Metrics:  metrics,
	}, router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc),
		Account: handler.NewAccountHandler(accountSvc),
		Faculty: handler.NewFacultyHandler(accountSvc, directorySvc),
		Leave:   handler.NewLeaveHandler(leaveSvc),
		Task:    handler.NewTaskHandler(taskSvc),
		Report:  handler.NewReportHandler(reportSvc),
		Metrics: handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server stopped", zap.Int("pid", os.Getpid()))
	return nil
}
