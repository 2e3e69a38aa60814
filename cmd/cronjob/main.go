package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"swiftride-rental-service/internal/config"
	"swiftride-rental-service/internal/gateway"
	"swiftride-rental-service/internal/jobs"
	"swiftride-rental-service/internal/logger"
	"swiftride-rental-service/internal/repository/postgres"
	"swiftride-rental-service/internal/scheduler"
	"swiftride-rental-service/internal/security"
	"swiftride-rental-service/internal/service"
)

// Standalone job runner: runs the reconciliation jobs without serving HTTP.
// Useful when the scheduler should live outside the API deployment.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('reconcile-vehicle-status', 'sweep-stale-rentals', 'all')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Swiftride Cronjob Runner...", "log_level", cfg.Log.Level)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	serviceToken, err := tokenManager.GenerateServiceToken("rental-cronjob", 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to mint service token: %v", err)
	}

	transportGw := gateway.NewBreakerTransportGateway(
		gateway.NewTransportClient(cfg.Transport.BaseURL, serviceToken, cfg.Transport.Timeout()),
		gateway.BreakerSettings{
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			OpenTimeout:         time.Duration(cfg.Breaker.OpenSeconds) * time.Second,
			HalfOpenMaxCalls:    cfg.Breaker.HalfOpenMaxCalls,
		},
	)
	alertSvc := service.NewAlertService(cfg.Alerts.SendGridAPIKey, cfg.Alerts.FromEmail, cfg.Alerts.OpsEmail)

	jobRunner := jobs.NewJobRunner(
		store.SyncTaskRepository,
		store.RentalRepository,
		store.StatusRepository,
		transportGw,
		alertSvc,
		cfg,
	)

	if *runOnce != "" {
		switch *runOnce {
		case "reconcile-vehicle-status":
			jobRunner.ReconcileVehicleStatus()
		case "sweep-stale-rentals":
			jobRunner.SweepStaleActiveRentals()
		case "all":
			jobRunner.ReconcileVehicleStatus()
			jobRunner.SweepStaleActiveRentals()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		return
	}

	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Cronjob runner stopped")
}
