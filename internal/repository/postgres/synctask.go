package postgres

import (
	"context"
	"database/sql"
	"time"

	"swiftride-rental-service/internal/repository"
)

type syncTaskRepository struct {
	db *sql.DB
}

func NewSyncTaskRepository(db *sql.DB) repository.SyncTaskRepository {
	return &syncTaskRepository{db: db}
}

func (r *syncTaskRepository) Enqueue(ctx context.Context, task *repository.SyncTask) error {
	query := `INSERT INTO vehicle_sync_tasks (transport_id, rental_id, status, attempts, created_on)
	          VALUES ($1, $2, $3, 0, $4) RETURNING id`
	now := time.Now()
	if err := r.db.QueryRowContext(ctx, query, task.TransportID, task.RentalID, task.Status, now).Scan(&task.ID); err != nil {
		return err
	}
	task.CreatedOn = now
	return nil
}

func (r *syncTaskRepository) ListPending(ctx context.Context, limit int32) ([]repository.SyncTask, error) {
	query := `SELECT id, transport_id, rental_id, status, attempts, created_on
	          FROM vehicle_sync_tasks ORDER BY created_on LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []repository.SyncTask
	for rows.Next() {
		var t repository.SyncTask
		if err := rows.Scan(&t.ID, &t.TransportID, &t.RentalID, &t.Status, &t.Attempts, &t.CreatedOn); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *syncTaskRepository) MarkAttempt(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE vehicle_sync_tasks SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

func (r *syncTaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM vehicle_sync_tasks WHERE id = $1`, id)
	return err
}
