package stats

import (
	"context"
	"fmt"

	"github.com/clinicboard/clinicboard/libs/db"
)

// Repository reads dashboard figures straight from the clinic tables
// plus the ingested rollups. All queries are read-only.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Source = (*Repository)(nil)

func (r *Repository) Summary(ctx context.Context, today string) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM patients),
			(SELECT count(*) FROM doctors WHERE is_active),
			(SELECT count(*) FROM appointments),
			(SELECT count(*) FROM appointments WHERE appointment_date = $1::date),
			(SELECT count(*) FROM appointments WHERE status = 'scheduled'),
			(SELECT count(*) FROM appointments WHERE status = 'completed')
	`, today).Scan(
		&s.TotalPatients,
		&s.TotalDoctors,
		&s.TotalAppointments,
		&s.TodayAppointments,
		&s.PendingAppointments,
		&s.CompletedAppointments,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summary query: %w", err)
	}
	return s, nil
}

const appointmentRowSelect = `
	SELECT a.id::text,
	       COALESCE(p.name, 'Unknown'),
	       COALESCE(d.name, 'Unknown'),
	       COALESCE(d.specialization, ''),
	       a.appointment_date::text,
	       a.appointment_time,
	       a.status::text,
	       a.is_emergency,
	       a.created_at
	FROM appointments a
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN doctors d ON d.id = a.doctor_id
`

func (r *Repository) AppointmentsOn(ctx context.Context, date string) ([]AppointmentRow, error) {
	return r.queryAppointments(ctx, appointmentRowSelect+`
		WHERE a.appointment_date = $1::date
		ORDER BY a.appointment_time ASC
	`, date)
}

func (r *Repository) RecentAppointments(ctx context.Context, limit int) ([]AppointmentRow, error) {
	return r.queryAppointments(ctx, appointmentRowSelect+`
		ORDER BY a.created_at DESC
		LIMIT $1
	`, limit)
}

func (r *Repository) queryAppointments(ctx context.Context, query string, args ...any) ([]AppointmentRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments query: %w", err)
	}
	defer rows.Close()

	var out []AppointmentRow
	for rows.Next() {
		var a AppointmentRow
		if err := rows.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.Specialization, &a.Date, &a.Time, &a.Status, &a.IsEmergency, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status::text, count(*)
		FROM appointments
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("status counts query: %w", err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// The trend buckets appointments by when they were booked, not when
// the visit happens. A booking made today for a visit months out counts
// in the current month, and rescheduling never rewrites past buckets.
const monthlyCountsQuery = `
	SELECT EXTRACT(YEAR FROM created_at)::int,
	       EXTRACT(MONTH FROM created_at)::int,
	       count(*)
	FROM appointments
	WHERE created_at >= $1::date
	GROUP BY 1, 2
	ORDER BY 1, 2`

func (r *Repository) MonthlyCounts(ctx context.Context, since string) ([]MonthCount, error) {
	rows, err := r.pool.Query(ctx, monthlyCountsQuery, since)
	if err != nil {
		return nil, fmt.Errorf("monthly counts query: %w", err)
	}
	defer rows.Close()

	var out []MonthCount
	for rows.Next() {
		var c MonthCount
		if err := rows.Scan(&c.Year, &c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("scan month count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) DoctorCounts(ctx context.Context) ([]DoctorCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.id::text, d.name, d.specialization, count(a.id)
		FROM doctors d
		JOIN appointments a ON a.doctor_id = d.id
		GROUP BY d.id, d.name, d.specialization
	`)
	if err != nil {
		return nil, fmt.Errorf("doctor counts query: %w", err)
	}
	defer rows.Close()

	var out []DoctorCount
	for rows.Next() {
		var c DoctorCount
		if err := rows.Scan(&c.DoctorID, &c.Name, &c.Specialization, &c.Count); err != nil {
			return nil, fmt.Errorf("scan doctor count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) PatientFacts(ctx context.Context) ([]PatientFact, error) {
	rows, err := r.pool.Query(ctx, `SELECT gender::text, age FROM patients`)
	if err != nil {
		return nil, fmt.Errorf("patient facts query: %w", err)
	}
	defer rows.Close()

	var out []PatientFact
	for rows.Next() {
		var f PatientFact
		if err := rows.Scan(&f.Gender, &f.Age); err != nil {
			return nil, fmt.Errorf("scan patient fact: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) DailyMetrics(ctx context.Context, since string) ([]DailyMetric, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT metric_date::text, booked, completed, cancelled
		FROM daily_appointment_metrics
		WHERE metric_date >= $1::date
		ORDER BY metric_date ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("daily metrics query: %w", err)
	}
	defer rows.Close()

	var out []DailyMetric
	for rows.Next() {
		var m DailyMetric
		if err := rows.Scan(&m.Date, &m.Booked, &m.Completed, &m.Cancelled); err != nil {
			return nil, fmt.Errorf("scan daily metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
