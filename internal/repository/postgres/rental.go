package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/repository"

	"github.com/lib/pq"
)

const rentalColumns = `id, user_id, transport_id, status_id, start_time, end_time, start_lat, start_lng, end_lat, end_lng, total_cost_cents, duration_minutes, distance_km, created_on, updated_on`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

// CreateActive relies on the partial unique index
// uniq_rentals_user_active (user_id) WHERE status_id = <ACTIVE> in addition
// to the NOT EXISTS guard, so two concurrent starts cannot both insert.
func (r *rentalRepository) CreateActive(ctx context.Context, rt *domain.Rental, activeStatusID int64) error {
	query := `INSERT INTO rentals (user_id, transport_id, status_id, start_time, start_lat, start_lng, created_on, updated_on)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $7
	          WHERE NOT EXISTS (SELECT 1 FROM rentals WHERE user_id = $1 AND status_id = $8)
	          RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		rt.UserID, rt.TransportID, rt.StatusID, rt.StartTime, rt.StartLat, rt.StartLng, now, activeStatusID,
	).Scan(&rt.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrActiveRentalExists
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return domain.ErrActiveRentalExists
	}
	if err != nil {
		return err
	}
	rt.CreatedOn = now
	rt.UpdatedOn = now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) FindActiveByUser(ctx context.Context, userID int64, activeStatusID int64) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE user_id = $1 AND status_id = $2`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, userID, activeStatusID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoActiveRental
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// ApplyTerminal is the single write of a terminal transition: status, end
// time/coordinates and derived fields land together, guarded by the row
// still being ACTIVE.
func (r *rentalRepository) ApplyTerminal(ctx context.Context, rt *domain.Rental, activeStatusID int64) error {
	query := `UPDATE rentals
	          SET status_id=$1, end_time=$2, end_lat=$3, end_lng=$4, total_cost_cents=$5, duration_minutes=$6, distance_km=$7, updated_on=$8
	          WHERE id=$9 AND status_id=$10`
	res, err := r.db.ExecContext(ctx, query,
		rt.StatusID, rt.EndTime, rt.EndLat, rt.EndLng, rt.TotalCostCents, rt.DurationMinutes, rt.DistanceKm, time.Now(),
		rt.ID, activeStatusID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the rental does not exist or it is already terminal.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rentals WHERE id = $1)`, rt.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrRentalNotActive
	}
	return nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Rental, int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := page * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE user_id = $1 ORDER BY start_time DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rentals, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, count, nil
}

func (r *rentalRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Rental, int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := page * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY start_time DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rentals, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, count, nil
}

func (r *rentalRepository) ListActiveSince(ctx context.Context, activeStatusID int64, cutoff time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status_id = $1 AND start_time < $2 ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, query, activeStatusID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRentals(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(
		&rt.ID, &rt.UserID, &rt.TransportID, &rt.StatusID,
		&rt.StartTime, &rt.EndTime,
		&rt.StartLat, &rt.StartLng, &rt.EndLat, &rt.EndLng,
		&rt.TotalCostCents, &rt.DurationMinutes, &rt.DistanceKm,
		&rt.CreatedOn, &rt.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func collectRentals(rows *sql.Rows) ([]domain.Rental, error) {
	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
