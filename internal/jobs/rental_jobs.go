package jobs

import (
	"context"
	"fmt"
	"time"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/logger"
)

// ReconcileVehicleStatus drains the queue of vehicle-status pushes that
// failed after their rental transition was already persisted. The rental row
// is the source of truth; this job repairs the availability drift.
func (jr *JobRunner) ReconcileVehicleStatus() {
	jr.runWithRecovery("ReconcileVehicleStatus", func() {
		ctx := context.Background()
		maxAttempts := int32(jr.config.Scheduler.MaxReconcileAttempts)

		tasks, err := jr.syncRepo.ListPending(ctx, 100)
		if err != nil {
			logger.Error("Failed to list pending vehicle sync tasks", "error", err)
			return
		}

		repaired := 0
		for _, task := range tasks {
			if err := jr.transport.SetStatus(ctx, task.TransportID, task.Status); err != nil {
				logger.Warn("Vehicle status reconciliation attempt failed",
					"task_id", task.ID,
					"transport_id", task.TransportID,
					"attempts", task.Attempts+1,
					"error", err)
				if err := jr.syncRepo.MarkAttempt(ctx, task.ID); err != nil {
					logger.Error("Failed to record reconciliation attempt", "task_id", task.ID, "error", err)
				}
				if task.Attempts+1 >= maxAttempts {
					jr.escalate(ctx, task.TransportID, task.RentalID, task.Status, task.Attempts+1)
					if err := jr.syncRepo.Delete(ctx, task.ID); err != nil {
						logger.Error("Failed to drop exhausted sync task", "task_id", task.ID, "error", err)
					}
				}
				continue
			}

			if err := jr.syncRepo.Delete(ctx, task.ID); err != nil {
				logger.Error("Failed to delete completed sync task", "task_id", task.ID, "error", err)
				continue
			}
			repaired++
		}

		if len(tasks) > 0 {
			logger.Info("Vehicle status reconciliation pass finished", "pending", len(tasks), "repaired", repaired)
		}
	})
}

func (jr *JobRunner) escalate(ctx context.Context, transportID, rentalID int64, status string, attempts int32) {
	subject := "Vehicle status reconciliation exhausted"
	message := fmt.Sprintf(
		"Vehicle %d could not be set to %q after %d attempts (rental %d). Manual intervention required.",
		transportID, status, attempts, rentalID,
	)
	logger.Error("Reconciliation exhausted, alerting operations",
		"transport_id", transportID,
		"rental_id", rentalID,
		"status", status,
		"attempts", attempts)
	if err := jr.alerts.SendOpsAlert(ctx, subject, message); err != nil {
		logger.Error("Failed to send ops alert", "transport_id", transportID, "error", err)
	}
}

// SweepStaleActiveRentals reports rentals that stayed ACTIVE beyond the
// configured window. It never terminates them: the decision belongs to an
// operator or to the transport subsystem's force-end signal.
func (jr *JobRunner) SweepStaleActiveRentals() {
	jr.runWithRecovery("SweepStaleActiveRentals", func() {
		ctx := context.Background()

		activeStatus, err := jr.statusRepo.GetByName(ctx, domain.RentalStatusActive)
		if err != nil {
			logger.Error("Failed to resolve ACTIVE status", "error", err)
			return
		}

		cutoff := time.Now().Add(-time.Duration(jr.config.Scheduler.StaleRentalHours) * time.Hour)
		stale, err := jr.rentalRepo.ListActiveSince(ctx, activeStatus.ID, cutoff)
		if err != nil {
			logger.Error("Failed to list stale active rentals", "error", err)
			return
		}

		for _, rt := range stale {
			logger.Warn("Rental active beyond stale window",
				"rental_id", rt.ID,
				"user_id", rt.UserID,
				"transport_id", rt.TransportID,
				"start_time", rt.StartTime)
		}
		if len(stale) > 0 {
			logger.Info("Stale rental sweep finished", "count", len(stale))
		}
	})
}
