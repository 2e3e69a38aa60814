package jobs

import (
	"swiftride-rental-service/internal/config"
	"swiftride-rental-service/internal/gateway"
	"swiftride-rental-service/internal/logger"
	"swiftride-rental-service/internal/repository"
	"swiftride-rental-service/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	syncRepo   repository.SyncTaskRepository
	rentalRepo repository.RentalRepository
	statusRepo repository.StatusRepository
	transport  gateway.TransportGateway
	alerts     service.AlertService
	config     *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	syncRepo repository.SyncTaskRepository,
	rentalRepo repository.RentalRepository,
	statusRepo repository.StatusRepository,
	transport gateway.TransportGateway,
	alerts service.AlertService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		syncRepo:   syncRepo,
		rentalRepo: rentalRepo,
		statusRepo: statusRepo,
		transport:  transport,
		alerts:     alerts,
		config:     cfg,
	}
}

// Config exposes the configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
