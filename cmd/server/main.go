package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	api "swiftride-rental-service/internal/api/http"
	"swiftride-rental-service/internal/config"
	"swiftride-rental-service/internal/events"
	"swiftride-rental-service/internal/gateway"
	"swiftride-rental-service/internal/jobs"
	"swiftride-rental-service/internal/logger"
	"swiftride-rental-service/internal/repository/postgres"
	"swiftride-rental-service/internal/scheduler"
	"swiftride-rental-service/internal/security"
	"swiftride-rental-service/internal/service"
	"swiftride-rental-service/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Swiftride Rental Service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Downstream services", "transport", cfg.Transport.BaseURL, "account", cfg.Account.BaseURL)

	// Initialize Database
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

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	serviceToken, err := tokenManager.GenerateServiceToken("rental-service", 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to mint service token: %v", err)
	}

	// Initialize Event Publisher
	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
	if err != nil {
		logger.Error("Failed to connect to Kafka", "error", err)
		log.Fatalf("Failed to connect to Kafka: %v", err)
	}
	defer publisher.Close()
	emitter := events.NewEmitter(publisher, events.Topics{
		Notification: cfg.Kafka.NotificationTopic,
		Report:       cfg.Kafka.ReportTopic,
		Analytics:    cfg.Kafka.AnalyticsTopic,
	})

	// Initialize Gateways behind the circuit breaker
	breakerSettings := gateway.BreakerSettings{
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		OpenTimeout:         time.Duration(cfg.Breaker.OpenSeconds) * time.Second,
		HalfOpenMaxCalls:    cfg.Breaker.HalfOpenMaxCalls,
	}
	transportGw := gateway.NewBreakerTransportGateway(
		gateway.NewTransportClient(cfg.Transport.BaseURL, serviceToken, cfg.Transport.Timeout()),
		breakerSettings,
	)
	accountGw := gateway.NewBreakerAccountGateway(
		gateway.NewAccountClient(cfg.Account.BaseURL, serviceToken, cfg.Account.Timeout()),
		breakerSettings,
	)

	// Initialize Services
	pricing := utils.TariffPricing{
		BaseFareCents:  cfg.Pricing.BaseFareCents,
		PerMinuteCents: cfg.Pricing.PerMinuteCents,
		PerKmCents:     cfg.Pricing.PerKmCents,
	}
	rentalSvc := service.NewRentalService(
		store.RentalRepository,
		store.StatusRepository,
		store.SyncTaskRepository,
		transportGw,
		accountGw,
		emitter,
		pricing,
	)
	alertSvc := service.NewAlertService(cfg.Alerts.SendGridAPIKey, cfg.Alerts.FromEmail, cfg.Alerts.OpsEmail)

	// Initialize Scheduler
	jobRunner := jobs.NewJobRunner(
		store.SyncTaskRepository,
		store.RentalRepository,
		store.StatusRepository,
		transportGw,
		alertSvc,
		cfg,
	)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	handler := api.NewRentalHandler(rentalSvc)
	router := api.NewRouter(handler, tokenManager)
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
