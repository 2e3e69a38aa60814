package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"swiftride-rental-service/internal/domain"
	"swiftride-rental-service/internal/repository"
)

// statusRepository caches the status catalog after first read. The catalog
// is three rows and never changes at runtime.
type statusRepository struct {
	db *sql.DB

	mu     sync.RWMutex
	byName map[domain.RentalStatusName]*domain.RentalStatus
	byID   map[int64]*domain.RentalStatus
}

func NewStatusRepository(db *sql.DB) repository.StatusRepository {
	return &statusRepository{
		db:     db,
		byName: make(map[domain.RentalStatusName]*domain.RentalStatus),
		byID:   make(map[int64]*domain.RentalStatus),
	}
}

func (r *statusRepository) GetByName(ctx context.Context, name domain.RentalStatusName) (*domain.RentalStatus, error) {
	r.mu.RLock()
	cached, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	st := &domain.RentalStatus{}
	query := `SELECT id, name FROM rental_statuses WHERE name = $1`
	err := r.db.QueryRowContext(ctx, query, string(name)).Scan(&st.ID, &st.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unknown rental status %q", name)
	}
	if err != nil {
		return nil, err
	}

	r.cache(st)
	return st, nil
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.RentalStatus, error) {
	r.mu.RLock()
	cached, ok := r.byID[id]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	st := &domain.RentalStatus{}
	query := `SELECT id, name FROM rental_statuses WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&st.ID, &st.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unknown rental status id %d", id)
	}
	if err != nil {
		return nil, err
	}

	r.cache(st)
	return st, nil
}

func (r *statusRepository) cache(st *domain.RentalStatus) {
	r.mu.Lock()
	r.byName[st.Name] = st
	r.byID[st.ID] = st
	r.mu.Unlock()
}
