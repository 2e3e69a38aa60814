package postgres

import (
	"database/sql"

	"swiftride-rental-service/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.RentalRepository
	repository.StatusRepository
	repository.SyncTaskRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		RentalRepository:   NewRentalRepository(db),
		StatusRepository:   NewStatusRepository(db),
		SyncTaskRepository: NewSyncTaskRepository(db),
	}
}
