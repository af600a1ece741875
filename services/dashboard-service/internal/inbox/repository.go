package inbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinicboard/clinicboard/libs/db"
)

// Repository keeps a ledger of applied event IDs. Double-counting is
// prevented by the ingest ledger itself; this table records what has
// been applied and flags redeliveries for the logs.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts the event ID and reports whether it was seen for the
// first time.
func (r *Repository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
	`, eventID, eventType)
	if err == nil {
		return true, nil
	}
	if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
		return false, nil
	}
	return false, err
}
