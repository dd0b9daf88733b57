package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clinicflow/visit-service/internal/models"
	"clinicflow/visit-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreatePatient(ctx context.Context, input store.PatientInput) (models.Patient, error) {
	patient := models.Patient{
		PatientID: uuid.NewString(),
		Name:      input.Name,
		Phone:     input.Phone,
		Age:       input.Age,
		Gender:    input.Gender,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO patients (patient_id, name, phone, age, gender, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, patient.PatientID, patient.Name, nullIfEmpty(patient.Phone), patient.Age,
		patient.Gender, patient.CreatedAt)
	if err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func (s *Store) GetPatient(ctx context.Context, patientID string) (models.Patient, error) {
	var patient models.Patient
	var phoneNull sql.NullString
	row := s.pool.QueryRow(ctx, `
		SELECT patient_id, name, phone, age, gender, created_at
		FROM patients
		WHERE patient_id = $1
	`, patientID)
	if err := row.Scan(&patient.PatientID, &patient.Name, &phoneNull, &patient.Age,
		&patient.Gender, &patient.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Patient{}, store.ErrPatientNotFound
		}
		return models.Patient{}, err
	}
	if phoneNull.Valid {
		patient.Phone = phoneNull.String
	}
	return patient, nil
}

func (s *Store) ListPatients(ctx context.Context, search string) ([]models.Patient, error) {
	query := `
		SELECT patient_id, name, phone, age, gender, created_at
		FROM patients
	`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%' OR phone LIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var patient models.Patient
		var phoneNull sql.NullString
		if err := rows.Scan(&patient.PatientID, &patient.Name, &phoneNull,
			&patient.Age, &patient.Gender, &patient.CreatedAt); err != nil {
			return nil, err
		}
		if phoneNull.Valid {
			patient.Phone = phoneNull.String
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return patients, nil
}
