package repository

import (
	"context"
	"time"

	"swiftride-rental-service/internal/domain"
)

type RentalRepository interface {
	// CreateActive inserts a new ACTIVE rental for the user unless one
	// already exists. The insert and the existence check are a single
	// statement so concurrent starts for the same user cannot both win.
	// Returns domain.ErrActiveRentalExists when the user has an active
	// rental.
	CreateActive(ctx context.Context, rental *domain.Rental, activeStatusID int64) error

	GetByID(ctx context.Context, id int64) (*domain.Rental, error)

	// FindActiveByUser returns the user's single ACTIVE rental, or
	// domain.ErrNoActiveRental when there is none.
	FindActiveByUser(ctx context.Context, userID int64, activeStatusID int64) (*domain.Rental, error)

	// ApplyTerminal writes the terminal state (status, end time/coords and
	// any derived fields) in one statement guarded by the current status
	// still being ACTIVE. Returns domain.ErrRentalNotActive when the row
	// is already terminal.
	ApplyTerminal(ctx context.Context, rental *domain.Rental, activeStatusID int64) error

	// ListByUser pages the user's rental history ordered by start time
	// descending, returning the page items and the total row count.
	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Rental, int64, error)

	// List pages all rentals for administrative and analytics use.
	List(ctx context.Context, page, pageSize int32) ([]domain.Rental, int64, error)

	// ListActiveSince returns ACTIVE rentals started before the cutoff.
	ListActiveSince(ctx context.Context, activeStatusID int64, cutoff time.Time) ([]domain.Rental, error)
}

type StatusRepository interface {
	// GetByName resolves a status name to its catalog row.
	GetByName(ctx context.Context, name domain.RentalStatusName) (*domain.RentalStatus, error)

	// GetByID resolves a status id to its catalog row.
	GetByID(ctx context.Context, id int64) (*domain.RentalStatus, error)
}

// SyncTask is a pending vehicle-status push that failed after the rental row
// was already persisted. The reconciliation job drains these.
type SyncTask struct {
	ID          int64
	TransportID int64
	RentalID    int64
	Status      string
	Attempts    int32
	CreatedOn   time.Time
}

type SyncTaskRepository interface {
	Enqueue(ctx context.Context, task *SyncTask) error
	ListPending(ctx context.Context, limit int32) ([]SyncTask, error)
	MarkAttempt(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}
