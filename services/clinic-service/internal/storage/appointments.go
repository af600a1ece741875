package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/outbox"
)

const appointmentViewColumns = `
	a.id::text,
	a.patient_id::text, COALESCE(p.name, 'Unknown'), COALESCE(p.email, ''), COALESCE(p.phone, ''),
	a.doctor_id::text, COALESCE(d.name, 'Unknown'), COALESCE(d.specialization, ''),
	a.appointment_date::text, a.appointment_time, a.status,
	a.notes, a.symptoms, a.diagnosis, a.prescription,
	COALESCE(a.follow_up_date::text, ''), a.is_emergency, a.created_at, a.updated_at`

const appointmentViewFrom = `
	FROM appointments a
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN doctors d ON d.id = a.doctor_id`

func (s *Store) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, patient_id, doctor_id, appointment_date, appointment_time, status, notes, symptoms, is_emergency)
		VALUES ($1, $2::uuid, $3::uuid, $4::date, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Notes, a.Symptoms, a.IsEmergency).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: time slot already booked", model.ErrConflict)
		}
		return err
	}

	if err := s.insertAppointmentEvent(ctx, tx, outbox.EventAppointmentBooked, *a, nil); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	var a model.Appointment
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, patient_id::text, doctor_id::text, appointment_date::text, appointment_time,
			status, notes, symptoms, diagnosis, prescription,
			COALESCE(follow_up_date::text, ''), is_emergency, created_at, updated_at
		FROM appointments
		WHERE id = $1::uuid
	`, id).Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
		&a.Status, &a.Notes, &a.Symptoms, &a.Diagnosis, &a.Prescription,
		&a.FollowUpDate, &a.IsEmergency, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if IsNotFound(err) {
			return model.Appointment{}, model.ErrNotFound
		}
		return model.Appointment{}, err
	}
	return a, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var oldStatus model.Status
	err = tx.QueryRow(ctx, `
		SELECT status FROM appointments WHERE id = $1::uuid FOR UPDATE
	`, a.ID).Scan(&oldStatus)
	if err != nil {
		if IsNotFound(err) {
			return model.ErrNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET patient_id = $2::uuid,
			doctor_id = $3::uuid,
			appointment_date = $4::date,
			appointment_time = $5,
			status = $6,
			notes = $7,
			symptoms = $8,
			diagnosis = $9,
			prescription = $10,
			follow_up_date = NULLIF($11, '')::date,
			is_emergency = $12,
			updated_at = now()
		WHERE id = $1::uuid
	`, a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status,
		a.Notes, a.Symptoms, a.Diagnosis, a.Prescription, a.FollowUpDate, a.IsEmergency)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: time slot already booked", model.ErrConflict)
		}
		return err
	}

	eventType := outbox.EventAppointmentUpdated
	if oldStatus != a.Status {
		eventType = outbox.EventAppointmentStatusChanged
	}
	if err := s.insertAppointmentEvent(ctx, tx, eventType, a, &oldStatus); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var a model.Appointment
	err = tx.QueryRow(ctx, `
		SELECT id::text, patient_id::text, doctor_id::text, appointment_date::text, appointment_time, status
		FROM appointments
		WHERE id = $1::uuid
		FOR UPDATE
	`, id).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Status)
	if err != nil {
		if IsNotFound(err) {
			return model.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1::uuid`, id); err != nil {
		return err
	}
	if err := s.insertAppointmentEvent(ctx, tx, outbox.EventAppointmentDeleted, a, nil); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetAppointmentView(ctx context.Context, id string) (model.AppointmentView, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+appointmentViewColumns+appointmentViewFrom+` WHERE a.id = $1::uuid`, id)
	v, err := scanAppointmentView(row)
	if err != nil {
		if IsNotFound(err) {
			return model.AppointmentView{}, model.ErrNotFound
		}
		return model.AppointmentView{}, err
	}
	return v, nil
}

func (s *Store) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.AppointmentView, error) {
	query := `SELECT` + appointmentViewColumns + appointmentViewFrom
	var args []any
	switch {
	case f.Date != "":
		query += ` WHERE a.appointment_date = $1::date ORDER BY a.appointment_time ASC`
		args = append(args, f.Date)
	case f.DoctorID != "":
		query += ` WHERE a.doctor_id = $1::uuid ORDER BY a.appointment_date ASC, a.appointment_time ASC`
		args = append(args, f.DoctorID)
	case f.PatientID != "":
		query += ` WHERE a.patient_id = $1::uuid ORDER BY a.appointment_date DESC, a.appointment_time ASC`
		args = append(args, f.PatientID)
	default:
		query += ` ORDER BY a.appointment_date ASC, a.appointment_time ASC`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []model.AppointmentView
	for rows.Next() {
		v, err := scanAppointmentView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return views, nil
}

// BookedTimes returns the slot tokens held by active appointments for a
// doctor on a given day.
func (s *Store) BookedTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT appointment_time
		FROM appointments
		WHERE doctor_id = $1::uuid
			AND appointment_date = $2::date
			AND status NOT IN ('cancelled', 'no-show')
		ORDER BY appointment_time ASC
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return times, nil
}

func scanAppointmentView(row pgx.Row) (model.AppointmentView, error) {
	var v model.AppointmentView
	err := row.Scan(
		&v.ID,
		&v.Patient.ID, &v.Patient.Name, &v.Patient.Email, &v.Patient.Phone,
		&v.Doctor.ID, &v.Doctor.Name, &v.Doctor.Specialization,
		&v.Date, &v.Time, &v.Status,
		&v.Notes, &v.Symptoms, &v.Diagnosis, &v.Prescription,
		&v.FollowUpDate, &v.IsEmergency, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return model.AppointmentView{}, err
	}
	return v, nil
}

func (s *Store) insertAppointmentEvent(ctx context.Context, tx pgx.Tx, eventType string, a model.Appointment, oldStatus *model.Status) error {
	fields := map[string]any{
		"appointment_id":   a.ID,
		"patient_id":       a.PatientID,
		"doctor_id":        a.DoctorID,
		"appointment_date": a.Date,
		"appointment_time": a.Time,
		"status":           a.Status,
		"occurred_at":      time.Now().UTC().Format(time.RFC3339),
	}
	if oldStatus != nil {
		fields["old_status"] = *oldStatus
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return s.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   a.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}
