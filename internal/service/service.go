package service

import (
	"context"

	"swiftride-rental-service/internal/domain"
)

// RentalService is the rental orchestration core: it drives a rental through
// its lifecycle, coordinating the transport and account subsystems, the
// rental store and the event emitters.
type RentalService interface {
	// Start opens a rental for the user on the given vehicle. The start
	// timestamp is assigned here, never trusted from the caller.
	Start(ctx context.Context, userID, transportID int64, startLat, startLng float64) (*domain.RentalProjection, error)

	// End closes an active rental at the renter's position, computing
	// duration, distance and cost. callerID scopes the rental to its owner;
	// zero marks a system caller and skips the ownership check.
	End(ctx context.Context, callerID, rentalID int64, endLat, endLng float64) (*domain.RentalProjection, error)

	// Cancel aborts an active rental without computing any derived fields.
	// callerID is scoped the same way as on End.
	Cancel(ctx context.Context, callerID, rentalID int64) (*domain.RentalProjection, error)

	// ForceEnd is the administrative terminal transition; the end
	// coordinates are the vehicle's last known position, supplied by the
	// system caller rather than the renter.
	ForceEnd(ctx context.Context, rentalID int64, endLat, endLng float64) (*domain.RentalProjection, error)

	// GetActive returns the user's active rental, or nil when there is
	// none. Absence is not an error.
	GetActive(ctx context.Context, userID int64) (*domain.RentalProjection, error)

	// History pages the user's rentals ordered by start time descending.
	History(ctx context.Context, userID int64, page, size int32) (*domain.RentalPage, error)

	// ListAll pages every rental across all users, for operator tooling.
	// Role enforcement is the transport layer's job.
	ListAll(ctx context.Context, page, size int32) (*domain.RentalPage, error)
}

// AlertService notifies operators about consistency risks that survived
// automated reconciliation.
type AlertService interface {
	SendOpsAlert(ctx context.Context, subject, message string) error
}
