package domain

import "time"

type RentalStatusName string

const (
	RentalStatusActive    RentalStatusName = "ACTIVE"
	RentalStatusCompleted RentalStatusName = "COMPLETED"
	RentalStatusCancelled RentalStatusName = "CANCELLED"
)

// RentalStatus is a row of the read-mostly status catalog. Transitions look
// the name up to resolve the id to store on the rental row.
type RentalStatus struct {
	ID   int64            `json:"id"`
	Name RentalStatusName `json:"name"`
}

// TransitionKind tags a rental lifecycle transition. End, Cancel and
// ForceEnd share one terminal write path parameterized by kind.
type TransitionKind string

const (
	TransitionStart    TransitionKind = "START"
	TransitionEnd      TransitionKind = "END"
	TransitionCancel   TransitionKind = "CANCEL"
	TransitionForceEnd TransitionKind = "FORCE_END"
)

// Terminal reports whether the transition leaves ACTIVE permanently.
func (k TransitionKind) Terminal() bool {
	return k == TransitionEnd || k == TransitionCancel || k == TransitionForceEnd
}

// Rental ties a user to a vehicle for a bounded time window.
//
// TotalCostCents, DurationMinutes and DistanceKm are nil while the rental is
// ACTIVE. An End or ForceEnd sets all three in the same update that flips the
// status; a Cancel leaves them nil. EndTime and the end coordinates are set
// only by terminal transitions.
type Rental struct {
	ID          int64 `json:"id"`
	UserID      int64 `json:"user_id"`
	TransportID int64 `json:"transport_id"`
	StatusID    int64 `json:"status_id"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	StartLat float64  `json:"start_lat"`
	StartLng float64  `json:"start_lng"`
	EndLat   *float64 `json:"end_lat,omitempty"`
	EndLng   *float64 `json:"end_lng,omitempty"`

	TotalCostCents  *int64   `json:"total_cost_cents,omitempty"`
	DurationMinutes *int64   `json:"duration_minutes,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// RentalProjection is the shape returned to callers of the orchestration
// core: the rental row joined with its resolved status name and the vehicle
// type captured at response time.
type RentalProjection struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	TransportID     int64            `json:"transport_id"`
	TransportType   string           `json:"transport_type,omitempty"`
	Status          RentalStatusName `json:"status"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	TotalCostCents  *int64           `json:"total_cost_cents,omitempty"`
	DurationMinutes *int64           `json:"duration_minutes,omitempty"`
	DistanceKm      *float64         `json:"distance_km,omitempty"`
}

// RentalPage is one page of rental history plus pagination metadata. Counts
// are best effort: the count and the page read are separate statements.
type RentalPage struct {
	Items         []Rental `json:"items"`
	Page          int32    `json:"page"`
	Size          int32    `json:"size"`
	TotalElements int64    `json:"total_elements"`
	TotalPages    int32    `json:"total_pages"`
	First         bool     `json:"first"`
	Last          bool     `json:"last"`
}

// NewRentalPage computes the pagination metadata for a page of items.
func NewRentalPage(items []Rental, page, size int32, total int64) RentalPage {
	totalPages := int32(0)
	if size > 0 {
		totalPages = int32((total + int64(size) - 1) / int64(size))
	}
	return RentalPage{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
