package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/feria-api/internal/config"
	"github.com/sjperalta/feria-api/internal/database"
	"github.com/sjperalta/feria-api/internal/handlers"
	"github.com/sjperalta/feria-api/internal/jobs"
	"github.com/sjperalta/feria-api/internal/repository"
	"github.com/sjperalta/feria-api/internal/services"
	"github.com/sjperalta/feria-api/pkg/logger"
)

// Scheduled job names, also accepted by POST /jobs/:name/run
const (
	jobReconcile = "reconcile"
	jobOverdue   = "overdue_scan"
)

// @title Feria API
// @version 1.0
// @description Settlement back office for exhibitor purchases: installment payments, rescheduling and the audit trail.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(database.Options{
		Driver:      cfg.DatabaseDriver,
		URL:         cfg.DatabaseURL,
		Environment: cfg.Environment,
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database", "driver", cfg.DatabaseDriver)

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	tx := database.NewTransactor(db, cfg.TxTimeout)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, tx, cfg)

	if err := scheduleJobs(worker, svcs, cfg); err != nil {
		logger.Error("Failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(svcs, worker)
	router := handlers.SetupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.TxTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) error {
	// Rebuild purchase aggregates from their installments and repair drift
	err := worker.ScheduleEvery(jobReconcile, cfg.ReconcileInterval, func(ctx context.Context) error {
		logger.Info("[Job] Reconciling purchase aggregates...")
		report, err := svcs.Settlement.Reconcile(ctx)
		if err != nil {
			return err
		}
		if report.Repaired > 0 {
			sentry.CaptureMessage("purchase aggregates repaired by reconciliation")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Overdue is derived at read time; this only reports how many are late
	err = worker.ScheduleEvery(jobOverdue, 24*time.Hour, func(ctx context.Context) error {
		count, err := svcs.Purchase.CountOverdue(ctx)
		if err != nil {
			return err
		}
		logger.Info("[Job] Overdue installments", "count", count)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Scheduled recurring jobs", "reconcile_interval", cfg.ReconcileInterval)
	return nil
}
