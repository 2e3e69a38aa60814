package events

import (
	"time"

	"github.com/google/uuid"

	"swiftride-rental-service/internal/domain"
)

// Event type names carried in the envelope.
const (
	TypeNotification = "rental.notification"
	TypeReport       = "rental.report"
	TypeAnalytics    = "rental.analytics"
)

// Envelope wraps every published event. Delivery is at-least-once; the
// envelope id lets consumers deduplicate.
type Envelope struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	OccurredAt int64  `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

func newEnvelope(eventType string, payload any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().Unix(),
		Payload:    payload,
	}
}

// NotificationEvent tells the notification subsystem which transition
// happened for which user.
type NotificationEvent struct {
	RentalID   int64                 `json:"rental_id"`
	UserID     int64                 `json:"user_id"`
	Transition domain.TransitionKind `json:"transition"`
}

// ReportEvent carries the full terminal snapshot the file subsystem needs to
// render a receipt without further lookups. Emitted only on END/FORCE_END.
type ReportEvent struct {
	RentalID       int64  `json:"rental_id"`
	UserID         int64  `json:"user_id"`
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	TransportID    int64  `json:"transport_id"`
	TransportType  string `json:"transport_type"`
	StartEpoch     int64  `json:"start_epoch"`
	EndEpoch       int64  `json:"end_epoch"`
	DurationMin    int64  `json:"duration_minutes"`
	Status         string `json:"status"`
	TotalCostCents int64  `json:"total_cost_cents"`
}

// AnalyticsEvent feeds the per-day aggregates of the analytics subsystem.
// Emitted on START and on every terminal transition.
type AnalyticsEvent struct {
	RentalID        int64    `json:"rental_id"`
	UserID          int64    `json:"user_id"`
	TransportID     int64    `json:"transport_id"`
	StartTime       int64    `json:"start_time"`
	EndTime         *int64   `json:"end_time,omitempty"`
	TotalCostCents  *int64   `json:"total_cost_cents,omitempty"`
	DurationMinutes *int64   `json:"duration_minutes,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}
