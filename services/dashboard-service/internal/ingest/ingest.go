package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"

	"github.com/clinicboard/clinicboard/libs/db"
	"github.com/clinicboard/clinicboard/libs/kafkax"
)

// Ingestor folds appointment lifecycle events into the dashboard's own
// tables: a raw event ledger and a per-day metrics rollup. Re-delivered
// events are harmless because the ledger insert is keyed by event_id
// and skipped on conflict.
type Ingestor struct {
	pool   *db.Pool
	logger *slog.Logger
}

func New(pool *db.Pool, logger *slog.Logger) *Ingestor {
	return &Ingestor{pool: pool, logger: logger}
}

type appointmentEvent struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Date          string `json:"appointment_date"`
	Time          string `json:"appointment_time"`
	Status        string `json:"status"`
	OldStatus     string `json:"old_status"`
	OccurredAt    string `json:"occurred_at"`
}

// Handle processes a single appointment event message.
func (i *Ingestor) Handle(ctx context.Context, msg kafka.Message) error {
	meta := kafkax.ExtractEventMeta(msg)

	var ev appointmentEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		// A malformed payload will never parse on retry either.
		i.logger.Error("invalid event payload", "err", err, "topic", msg.Topic, "event_id", meta.EventID)
		return nil
	}
	if ev.AppointmentID == "" || ev.Date == "" {
		i.logger.Error("missing required event fields", "topic", msg.Topic, "event_id", meta.EventID)
		return nil
	}

	tx, err := i.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO booking_events (event_id, event_type, appointment_id, doctor_id, patient_id, appointment_date, status, old_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, NULLIF($8, ''), COALESCE(NULLIF($9, '')::timestamptz, now()))
		ON CONFLICT (event_id) DO NOTHING
	`, meta.EventID, meta.EventType, ev.AppointmentID, ev.DoctorID, ev.PatientID, ev.Date, ev.Status, ev.OldStatus, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tx.Commit(ctx)
	}

	if err := i.applyMetrics(ctx, tx, meta.EventType, ev); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// applyMetrics keeps daily_appointment_metrics in step with the event
// stream: booked bumps the day's booked count, terminal status changes
// bump completed or cancelled.
func (i *Ingestor) applyMetrics(ctx context.Context, tx pgx.Tx, eventType string, ev appointmentEvent) error {
	var column string
	switch eventType {
	case "clinic.appointment.booked.v1":
		column = "booked"
	case "clinic.appointment.status_changed.v1":
		switch ev.Status {
		case "completed":
			column = "completed"
		case "cancelled", "no-show":
			column = "cancelled"
		default:
			return nil
		}
	default:
		return nil
	}

	_, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO daily_appointment_metrics (metric_date, %[1]s)
		VALUES ($1::date, 1)
		ON CONFLICT (metric_date)
		DO UPDATE SET %[1]s = daily_appointment_metrics.%[1]s + 1, updated_at = now()
	`, column), ev.Date)
	if err != nil {
		return fmt.Errorf("update daily metrics: %w", err)
	}
	return nil
}
