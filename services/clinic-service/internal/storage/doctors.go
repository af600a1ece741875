package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

const doctorColumns = `
	id::text, name, email, phone, specialization, experience, qualification, license_number,
	availability, is_active, created_at, updated_at`

func (s *Store) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	d.ID = uuid.NewString()
	d.IsActive = true
	return s.pool.QueryRow(ctx, `
		INSERT INTO doctors
			(id, name, email, phone, specialization, experience, qualification, license_number, availability, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING created_at, updated_at
	`, d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.Experience, d.Qualification,
		d.LicenseNumber, []byte(d.Availability)).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (s *Store) GetDoctor(ctx context.Context, id string) (model.Doctor, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+doctorColumns+` FROM doctors WHERE id = $1::uuid`, id)
	d, err := scanDoctor(row)
	if err != nil {
		if IsNotFound(err) {
			return model.Doctor{}, model.ErrNotFound
		}
		return model.Doctor{}, err
	}
	return d, nil
}

// GetDoctorRef resolves a doctor reference for display. Inactive
// doctors resolve too; historical appointments keep their doctor.
func (s *Store) GetDoctorRef(ctx context.Context, id string) (model.DoctorRef, error) {
	var ref model.DoctorRef
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, name, specialization FROM doctors WHERE id = $1::uuid
	`, id).Scan(&ref.ID, &ref.Name, &ref.Specialization)
	if err != nil {
		if IsNotFound(err) {
			return model.DoctorRef{}, model.ErrNotFound
		}
		return model.DoctorRef{}, err
	}
	return ref, nil
}

// ListDoctors returns active doctors only; deactivated doctors are
// excluded from listings and new-appointment assignment.
func (s *Store) ListDoctors(ctx context.Context, limit int) ([]model.Doctor, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryDoctors(ctx, `SELECT`+doctorColumns+` FROM doctors WHERE is_active ORDER BY created_at DESC LIMIT $1`, limit)
}

func (s *Store) ListDoctorsBySpecialization(ctx context.Context, specialization string) ([]model.Doctor, error) {
	return s.queryDoctors(ctx, `
		SELECT`+doctorColumns+`
		FROM doctors
		WHERE is_active AND specialization ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
	`, specialization)
}

func (s *Store) SearchDoctors(ctx context.Context, query string) ([]model.Doctor, error) {
	return s.queryDoctors(ctx, `
		SELECT`+doctorColumns+`
		FROM doctors
		WHERE is_active
			AND (name ILIKE '%' || $1 || '%'
				OR email ILIKE '%' || $1 || '%'
				OR specialization ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
	`, query)
}

func (s *Store) UpdateDoctor(ctx context.Context, d *model.Doctor) error {
	err := s.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = $2,
			email = $3,
			phone = $4,
			specialization = $5,
			experience = $6,
			qualification = $7,
			license_number = $8,
			availability = $9,
			updated_at = now()
		WHERE id = $1::uuid
		RETURNING is_active, created_at, updated_at
	`, d.ID, d.Name, d.Email, d.Phone, d.Specialization, d.Experience, d.Qualification,
		d.LicenseNumber, []byte(d.Availability)).Scan(&d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return model.ErrNotFound
		}
		return err
	}
	return nil
}

// DeactivateDoctor is the doctor delete: the record is kept, the active
// flag is cleared.
func (s *Store) DeactivateDoctor(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE doctors SET is_active = false, updated_at = now() WHERE id = $1::uuid
	`, id)
	if err != nil {
		if IsNotFound(err) {
			return model.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) queryDoctors(ctx context.Context, query string, args ...any) ([]model.Doctor, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanDoctor(row pgx.Row) (model.Doctor, error) {
	var d model.Doctor
	var availability []byte
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Phone, &d.Specialization, &d.Experience,
		&d.Qualification, &d.LicenseNumber, &availability, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return model.Doctor{}, err
	}
	d.Availability = availability
	return d, nil
}
