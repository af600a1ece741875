package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicboard/clinicboard/libs/db"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/outbox"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/scheduling"
)

var _ scheduling.Store = (*Store)(nil)

// Store is the Postgres entity store. Slot exclusivity is enforced by a
// partial unique index over active appointments, so conflicting inserts
// and updates fail atomically inside the database.
type Store struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func New(pool *db.Pool, outboxRepo *outbox.Repository) *Store {
	return &Store{pool: pool, outbox: outboxRepo}
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	// Malformed uuid input cannot match any row.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
