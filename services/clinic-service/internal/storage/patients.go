package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

const patientColumns = `
	id::text, name, email, phone, age, gender, address, medical_history,
	COALESCE(emergency_name, ''), COALESCE(emergency_phone, ''), COALESCE(emergency_relationship, ''),
	created_at, updated_at`

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	p.ID = uuid.NewString()
	var ecName, ecPhone, ecRel string
	if p.EmergencyContact != nil {
		ecName = p.EmergencyContact.Name
		ecPhone = p.EmergencyContact.Phone
		ecRel = p.EmergencyContact.Relationship
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO patients
			(id, name, email, phone, age, gender, address, medical_history,
			 emergency_name, emergency_phone, emergency_relationship)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''))
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Email, p.Phone, p.Age, p.Gender, p.Address, p.MedicalHistory,
		ecName, ecPhone, ecRel).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (model.Patient, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+patientColumns+` FROM patients WHERE id = $1::uuid`, id)
	p, err := scanPatient(row)
	if err != nil {
		if IsNotFound(err) {
			return model.Patient{}, model.ErrNotFound
		}
		return model.Patient{}, err
	}
	return p, nil
}

func (s *Store) GetPatientRef(ctx context.Context, id string) (model.PatientRef, error) {
	var ref model.PatientRef
	err := s.pool.QueryRow(ctx, `
		SELECT id::text, name, email, phone FROM patients WHERE id = $1::uuid
	`, id).Scan(&ref.ID, &ref.Name, &ref.Email, &ref.Phone)
	if err != nil {
		if IsNotFound(err) {
			return model.PatientRef{}, model.ErrNotFound
		}
		return model.PatientRef{}, err
	}
	return ref, nil
}

func (s *Store) ListPatients(ctx context.Context, limit int) ([]model.Patient, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `SELECT`+patientColumns+` FROM patients ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (s *Store) UpdatePatient(ctx context.Context, p *model.Patient) error {
	var ecName, ecPhone, ecRel string
	if p.EmergencyContact != nil {
		ecName = p.EmergencyContact.Name
		ecPhone = p.EmergencyContact.Phone
		ecRel = p.EmergencyContact.Relationship
	}
	err := s.pool.QueryRow(ctx, `
		UPDATE patients
		SET name = $2,
			email = $3,
			phone = $4,
			age = $5,
			gender = $6,
			address = $7,
			medical_history = $8,
			emergency_name = NULLIF($9, ''),
			emergency_phone = NULLIF($10, ''),
			emergency_relationship = NULLIF($11, ''),
			updated_at = now()
		WHERE id = $1::uuid
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Email, p.Phone, p.Age, p.Gender, p.Address, p.MedicalHistory,
		ecName, ecPhone, ecRel).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsConflict(err) {
			return fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		if IsNotFound(err) {
			return model.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) DeletePatient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1::uuid`, id)
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

func scanPatient(row pgx.Row) (model.Patient, error) {
	var p model.Patient
	var ecName, ecPhone, ecRel string
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.Age, &p.Gender, &p.Address, &p.MedicalHistory,
		&ecName, &ecPhone, &ecRel,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Patient{}, err
	}
	if ecName != "" || ecPhone != "" || ecRel != "" {
		p.EmergencyContact = &model.EmergencyContact{Name: ecName, Phone: ecPhone, Relationship: ecRel}
	}
	return p, nil
}
