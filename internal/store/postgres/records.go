package postgres

import (
	"context"
	"database/sql"
	"errors"

	"clinicflow/visit-service/internal/models"
	"clinicflow/visit-service/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) measurementForVisit(ctx context.Context, visitID string) (models.EyeMeasurement, bool, error) {
	var m models.EyeMeasurement
	var sphereL, sphereR, cylL, cylR, pd, iopL, iopR sql.NullFloat64
	var axisL, axisR sql.NullInt64
	row := s.pool.QueryRow(ctx, `
		SELECT measurement_id, visit_id, acuity_left, acuity_right,
			sphere_left, sphere_right, cylinder_left, cylinder_right,
			axis_left, axis_right, pupil_distance, pressure_left, pressure_right,
			notes, measured_by, created_at
		FROM eye_measurements
		WHERE visit_id = $1
	`, visitID)
	if err := row.Scan(&m.MeasurementID, &m.VisitID, &m.AcuityLeft, &m.AcuityRight,
		&sphereL, &sphereR, &cylL, &cylR, &axisL, &axisR, &pd, &iopL, &iopR,
		&m.Notes, &m.MeasuredBy, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.EyeMeasurement{}, false, nil
		}
		return models.EyeMeasurement{}, false, err
	}
	m.SphereLeft = nullFloatPtr(sphereL)
	m.SphereRight = nullFloatPtr(sphereR)
	m.CylinderLeft = nullFloatPtr(cylL)
	m.CylinderRight = nullFloatPtr(cylR)
	m.AxisLeft = nullIntPtr(axisL)
	m.AxisRight = nullIntPtr(axisR)
	m.PupilDistance = nullFloatPtr(pd)
	m.PressureLeft = nullFloatPtr(iopL)
	m.PressureRight = nullFloatPtr(iopR)
	return m, true, nil
}

func (s *Store) prescriptionForVisit(ctx context.Context, visitID string) (models.Prescription, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT prescription_id, visit_id, diagnosis, follow_up, buy_from_clinic,
			dispensed, dispensed_by, dispensed_at, created_by, created_at
		FROM prescriptions
		WHERE visit_id = $1
	`, visitID)
	prescription, err := s.scanPrescription(ctx, row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Prescription{}, false, nil
		}
		return models.Prescription{}, false, err
	}
	return prescription, true, nil
}

func (s *Store) GetPrescription(ctx context.Context, prescriptionID string) (models.Prescription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT prescription_id, visit_id, diagnosis, follow_up, buy_from_clinic,
			dispensed, dispensed_by, dispensed_at, created_by, created_at
		FROM prescriptions
		WHERE prescription_id = $1
	`, prescriptionID)
	prescription, err := s.scanPrescription(ctx, row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Prescription{}, store.ErrPrescriptionNotFound
		}
		return models.Prescription{}, err
	}
	return prescription, nil
}

func (s *Store) scanPrescription(ctx context.Context, row pgx.Row) (models.Prescription, error) {
	var p models.Prescription
	var dispensedBy sql.NullString
	var dispensedAt sql.NullTime
	if err := row.Scan(&p.PrescriptionID, &p.VisitID, &p.Diagnosis, &p.FollowUp,
		&p.BuyFromClinic, &p.Dispensed, &dispensedBy, &dispensedAt,
		&p.CreatedBy, &p.CreatedAt); err != nil {
		return models.Prescription{}, err
	}
	p.DispensedBy = nullStringPtr(dispensedBy)
	p.DispensedAt = nullTimePtr(dispensedAt)

	rows, err := s.pool.Query(ctx, `
		SELECT medicine_id, medicine_name, quantity, dosage
		FROM prescription_medicines
		WHERE prescription_id = $1
	`, p.PrescriptionID)
	if err != nil {
		return models.Prescription{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line models.PrescriptionMedicine
		if err := rows.Scan(&line.MedicineID, &line.MedicineName, &line.Quantity, &line.Dosage); err != nil {
			return models.Prescription{}, err
		}
		p.Medicines = append(p.Medicines, line)
	}
	if err := rows.Err(); err != nil {
		return models.Prescription{}, err
	}
	return p, nil
}

func (s *Store) saleForPrescription(ctx context.Context, prescriptionID string) (models.PharmacySale, bool, error) {
	var sale models.PharmacySale
	var paidAt sql.NullTime
	row := s.pool.QueryRow(ctx, `
		SELECT sale_id, prescription_id, total_amount, payment_method, paid,
			paid_at, created_by, created_at
		FROM pharmacy_sales
		WHERE prescription_id = $1
	`, prescriptionID)
	if err := row.Scan(&sale.SaleID, &sale.PrescriptionID, &sale.TotalAmount,
		&sale.PaymentMethod, &sale.Paid, &paidAt, &sale.CreatedBy, &sale.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PharmacySale{}, false, nil
		}
		return models.PharmacySale{}, false, err
	}
	sale.PaidAt = nullTimePtr(paidAt)

	rows, err := s.pool.Query(ctx, `
		SELECT medicine_id, medicine_name, quantity, unit_price, line_total
		FROM pharmacy_sale_items
		WHERE sale_id = $1
	`, sale.SaleID)
	if err != nil {
		return models.PharmacySale{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var item models.PharmacySaleItem
		if err := rows.Scan(&item.MedicineID, &item.MedicineName, &item.Quantity,
			&item.UnitPrice, &item.LineTotal); err != nil {
			return models.PharmacySale{}, false, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return models.PharmacySale{}, false, err
	}
	return sale, true, nil
}

func nullFloatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	number := value.Float64
	return &number
}

func nullIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	number := int(value.Int64)
	return &number
}
