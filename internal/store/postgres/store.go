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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"
const foreignKeyViolation = "23503"

type Store struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

type Options struct {
	Location *time.Location
}

func NewStore(pool *pgxpool.Pool, options Options) *Store {
	loc := options.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Store{pool: pool, loc: loc}
}

// visitDay truncates a timestamp to the clinic's local calendar day. Queue
// numbers restart at 1 on this boundary.
func visitDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

const visitColumns = `
	visit_id, patient_id, queue_number, visit_date, status, doctor_id, room,
	payment_method, payment_amount, created_at, completed_at, request_id
`

func scanVisit(row pgx.Row) (models.Visit, error) {
	var visit models.Visit
	var visitDate time.Time
	var doctorNull, roomNull, methodNull, requestNull sql.NullString
	var amountNull sql.NullInt64
	var completedNull sql.NullTime
	if err := row.Scan(&visit.VisitID, &visit.PatientID, &visit.QueueNumber, &visitDate,
		&visit.Status, &doctorNull, &roomNull, &methodNull, &amountNull,
		&visit.CreatedAt, &completedNull, &requestNull); err != nil {
		return models.Visit{}, err
	}
	visit.VisitDate = visitDate.Format("2006-01-02")
	visit.DoctorID = nullStringPtr(doctorNull)
	visit.Room = nullStringPtr(roomNull)
	visit.PaymentMethod = nullStringPtr(methodNull)
	visit.PaymentAmount = nullInt64Ptr(amountNull)
	visit.CompletedAt = nullTimePtr(completedNull)
	if requestNull.Valid {
		visit.RequestID = requestNull.String
	}
	return visit, nil
}

func (s *Store) CreateVisit(ctx context.Context, input store.CreateVisitInput) (models.Visit, bool, error) {
	visit, created, err := s.createVisitOnce(ctx, input)
	if isUniqueViolation(err) {
		// Lost a queue-number race against a concurrent registration; the
		// per-day counter makes a second attempt collision free.
		visit, created, err = s.createVisitOnce(ctx, input)
		if isUniqueViolation(err) {
			return models.Visit{}, false, store.ErrQueueConflict
		}
	}
	return visit, created, err
}

func (s *Store) createVisitOnce(ctx context.Context, input store.CreateVisitInput) (models.Visit, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Visit{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, found, err := findVisitByRequestID(ctx, tx, input.RequestID)
	if err != nil {
		return models.Visit{}, false, err
	}
	if found {
		if err = tx.Commit(ctx); err != nil {
			return models.Visit{}, false, err
		}
		return existing, false, nil
	}

	if err = ensurePatientExists(ctx, tx, input.PatientID); err != nil {
		return models.Visit{}, false, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	day := visitDay(createdAt, s.loc)

	seq, err := nextQueueNumber(ctx, tx, day)
	if err != nil {
		return models.Visit{}, false, err
	}

	visitID := uuid.NewString()
	row := tx.QueryRow(ctx, `
		INSERT INTO visits (
			visit_id, request_id, patient_id, queue_number, visit_date, status,
			doctor_id, room, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (request_id) DO NOTHING
		RETURNING `+visitColumns, visitID, input.RequestID, input.PatientID, seq, day,
		models.StatusWaiting, nullIfEmpty(input.DoctorID), nullIfEmpty(input.Room), createdAt)

	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race on request_id after the lookup above missed; the
			// winner's row is committed by now, so return it.
			existing, found, err = findVisitByRequestID(ctx, tx, input.RequestID)
			if err != nil {
				return models.Visit{}, false, err
			}
			if !found {
				err = pgx.ErrNoRows
				return models.Visit{}, false, err
			}
			if err = tx.Commit(ctx); err != nil {
				return models.Visit{}, false, err
			}
			return existing, false, nil
		}
		return models.Visit{}, false, err
	}

	if err = insertPrintJob(ctx, tx, "visit_slip", map[string]interface{}{
		"visit_id":     visit.VisitID,
		"patient_id":   visit.PatientID,
		"queue_number": visit.QueueNumber,
		"visit_date":   visit.VisitDate,
	}); err != nil {
		return models.Visit{}, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Visit{}, false, err
	}
	return visit, true, nil
}

func (s *Store) SendToEyeMeasurement(ctx context.Context, visitID string) (models.Visit, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE visits
		SET status = $1
		WHERE visit_id = $2 AND status IN ($3, $4)
		RETURNING `+visitColumns, models.StatusEyeMeasurement, visitID,
		models.StatusWaiting, models.StatusRegistered)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Visit{}, s.diagnoseVisit(ctx, visitID)
		}
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) RecordMeasurement(ctx context.Context, input store.MeasurementInput) (models.Visit, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Visit{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	status, err := lockVisitStatus(ctx, tx, input.VisitID)
	if err != nil {
		return models.Visit{}, err
	}
	if !store.ValidTransition("record_measurement", status) {
		err = store.ErrInvalidState
		return models.Visit{}, err
	}

	var measurementExists bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM eye_measurements WHERE visit_id = $1)
	`, input.VisitID)
	if err = row.Scan(&measurementExists); err != nil {
		return models.Visit{}, err
	}
	if measurementExists {
		err = store.ErrMeasurementExists
		return models.Visit{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO eye_measurements (
			measurement_id, visit_id, acuity_left, acuity_right,
			sphere_left, sphere_right, cylinder_left, cylinder_right,
			axis_left, axis_right, pupil_distance, pressure_left, pressure_right,
			notes, measured_by, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, uuid.NewString(), input.VisitID, input.AcuityLeft, input.AcuityRight,
		input.SphereLeft, input.SphereRight, input.CylinderLeft, input.CylinderRight,
		input.AxisLeft, input.AxisRight, input.PupilDistance, input.PressureLeft,
		input.PressureRight, input.Notes, input.MeasuredBy, time.Now().UTC())
	if err != nil {
		return models.Visit{}, err
	}

	// A late workup on a visit already at the doctor must not yank it out of
	// the consultation; only earlier stages advance to with_doctor.
	nextStatus := models.StatusWithDoctor
	if status == models.StatusWithDoctor || status == models.StatusInConsultation {
		nextStatus = status
	}

	row = tx.QueryRow(ctx, `
		UPDATE visits SET status = $1 WHERE visit_id = $2
		RETURNING `+visitColumns, nextStatus, input.VisitID)
	visit, err := scanVisit(row)
	if err != nil {
		return models.Visit{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) CallForConsultation(ctx context.Context, visitID, doctorID string) (models.Visit, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Visit{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serializes concurrent calls for the same doctor so the one-active-visit
	// invariant holds under read committed.
	if err = lockDoctor(ctx, tx, doctorID); err != nil {
		return models.Visit{}, err
	}

	var busy bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM visits
			WHERE doctor_id = $1 AND status = $2 AND visit_id <> $3
		)
	`, doctorID, models.StatusInConsultation, visitID)
	if err = row.Scan(&busy); err != nil {
		return models.Visit{}, err
	}
	if busy {
		err = store.ErrDoctorBusy
		return models.Visit{}, err
	}

	row = tx.QueryRow(ctx, `
		UPDATE visits
		SET status = $1
		WHERE visit_id = $2 AND doctor_id = $3 AND status IN ($4, $5)
		RETURNING `+visitColumns, models.StatusInConsultation, visitID, doctorID,
		models.StatusWaiting, models.StatusWithDoctor)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = s.diagnoseCall(ctx, tx, visitID, doctorID)
			return models.Visit{}, err
		}
		return models.Visit{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) CreatePrescription(ctx context.Context, input store.PrescriptionInput) (models.Visit, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Visit{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	status, err := lockVisitStatus(ctx, tx, input.VisitID)
	if err != nil {
		return models.Visit{}, err
	}
	if !store.ValidTransition("prescribe", status) {
		err = store.ErrInvalidState
		return models.Visit{}, err
	}

	var prescriptionExists bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM prescriptions WHERE visit_id = $1)
	`, input.VisitID)
	if err = row.Scan(&prescriptionExists); err != nil {
		return models.Visit{}, err
	}
	if prescriptionExists {
		err = store.ErrPrescriptionExists
		return models.Visit{}, err
	}

	prescriptionID := uuid.NewString()
	createdAt := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO prescriptions (
			prescription_id, visit_id, diagnosis, follow_up, buy_from_clinic,
			dispensed, created_by, created_at
		) VALUES ($1,$2,$3,$4,$5,FALSE,$6,$7)
	`, prescriptionID, input.VisitID, input.Diagnosis, input.FollowUp,
		input.BuyFromClinic, input.CreatedBy, createdAt)
	if err != nil {
		return models.Visit{}, err
	}

	var lines []map[string]interface{}
	for _, line := range input.Medicines {
		name, lookupErr := medicineName(ctx, tx, line.MedicineID)
		if lookupErr != nil {
			err = lookupErr
			return models.Visit{}, err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO prescription_medicines (
				prescription_id, medicine_id, medicine_name, quantity, dosage
			) VALUES ($1,$2,$3,$4,$5)
		`, prescriptionID, line.MedicineID, name, line.Quantity, line.Dosage)
		if err != nil {
			return models.Visit{}, err
		}
		lines = append(lines, map[string]interface{}{
			"medicine_name": name,
			"quantity":      line.Quantity,
			"dosage":        line.Dosage,
		})
	}

	nextStatus := models.StatusCompleted
	var completedAt interface{} = createdAt
	if input.BuyFromClinic {
		nextStatus = models.StatusPharmacy
		completedAt = nil
	}

	row = tx.QueryRow(ctx, `
		UPDATE visits SET status = $1, completed_at = $2 WHERE visit_id = $3
		RETURNING `+visitColumns, nextStatus, completedAt, input.VisitID)
	visit, err := scanVisit(row)
	if err != nil {
		return models.Visit{}, err
	}

	if err = insertPrintJob(ctx, tx, "prescription_sheet", map[string]interface{}{
		"prescription_id": prescriptionID,
		"visit_id":        input.VisitID,
		"diagnosis":       input.Diagnosis,
		"medicines":       lines,
	}); err != nil {
		return models.Visit{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) Dispense(ctx context.Context, input store.DispenseInput) (store.VisitDetail, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.VisitDetail{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var visitID string
	var dispensed bool
	row := tx.QueryRow(ctx, `
		SELECT visit_id, dispensed
		FROM prescriptions
		WHERE prescription_id = $1
		FOR UPDATE
	`, input.PrescriptionID)
	if err = row.Scan(&visitID, &dispensed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrPrescriptionNotFound
		}
		return store.VisitDetail{}, err
	}
	if dispensed {
		// The dispensed flag is the idempotency guard: a retried request must
		// not decrement stock a second time.
		err = store.ErrAlreadyDispensed
		return store.VisitDetail{}, err
	}

	status, err := lockVisitStatus(ctx, tx, visitID)
	if err != nil {
		return store.VisitDetail{}, err
	}
	if !store.ValidTransition("dispense", status) {
		err = store.ErrInvalidState
		return store.VisitDetail{}, err
	}

	rows, err := tx.Query(ctx, `
		SELECT medicine_id, quantity
		FROM prescription_medicines
		WHERE prescription_id = $1
	`, input.PrescriptionID)
	if err != nil {
		return store.VisitDetail{}, err
	}
	type lineItem struct {
		medicineID string
		quantity   int
	}
	var items []lineItem
	for rows.Next() {
		var item lineItem
		if err = rows.Scan(&item.medicineID, &item.quantity); err != nil {
			rows.Close()
			return store.VisitDetail{}, err
		}
		items = append(items, item)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return store.VisitDetail{}, err
	}

	// Stock is clamped at zero rather than rejected: the clinic dispenses
	// whatever is on the shelf and reconciles inventory by restocking.
	for _, item := range items {
		_, err = tx.Exec(ctx, `
			UPDATE medicines
			SET stock = GREATEST(stock - $1, 0)
			WHERE medicine_id = $2
		`, item.quantity, item.medicineID)
		if err != nil {
			return store.VisitDetail{}, err
		}
	}

	now := time.Now().UTC()
	if input.Sale != nil {
		if err = insertSale(ctx, tx, input.PrescriptionID, input.DispensedBy, now, *input.Sale); err != nil {
			return store.VisitDetail{}, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE prescriptions
		SET dispensed = TRUE, dispensed_by = $1, dispensed_at = $2
		WHERE prescription_id = $3
	`, input.DispensedBy, now, input.PrescriptionID)
	if err != nil {
		return store.VisitDetail{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE visits SET status = $1, completed_at = $2 WHERE visit_id = $3
	`, models.StatusCompleted, now, visitID)
	if err != nil {
		return store.VisitDetail{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return store.VisitDetail{}, err
	}
	return s.GetVisit(ctx, visitID)
}

func insertSale(ctx context.Context, tx pgx.Tx, prescriptionID, createdBy string, now time.Time, sale store.SaleInput) error {
	saleID := uuid.NewString()
	var total int64
	type saleLine struct {
		medicineID string
		name       string
		quantity   int
		unitPrice  int64
		lineTotal  int64
	}
	var lines []saleLine
	for _, item := range sale.Items {
		name, err := medicineName(ctx, tx, item.MedicineID)
		if err != nil {
			return err
		}
		lineTotal := int64(item.Quantity) * item.UnitPrice
		total += lineTotal
		lines = append(lines, saleLine{
			medicineID: item.MedicineID,
			name:       name,
			quantity:   item.Quantity,
			unitPrice:  item.UnitPrice,
			lineTotal:  lineTotal,
		})
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO pharmacy_sales (
			sale_id, prescription_id, total_amount, payment_method, paid, paid_at,
			created_by, created_at
		) VALUES ($1,$2,$3,$4,TRUE,$5,$6,$7)
	`, saleID, prescriptionID, total, sale.PaymentMethod, now, createdBy, now)
	if err != nil {
		return err
	}
	for _, line := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO pharmacy_sale_items (
				sale_id, medicine_id, medicine_name, quantity, unit_price, line_total
			) VALUES ($1,$2,$3,$4,$5,$6)
		`, saleID, line.medicineID, line.name, line.quantity, line.unitPrice, line.lineTotal)
		if err != nil {
			return err
		}
	}
	return insertPrintJob(ctx, tx, "sale_receipt", map[string]interface{}{
		"sale_id":         saleID,
		"prescription_id": prescriptionID,
		"total_amount":    total,
		"payment_method":  sale.PaymentMethod,
	})
}

func (s *Store) RecordPayment(ctx context.Context, visitID, method string, amount int64) (models.Visit, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE visits
		SET payment_method = $1, payment_amount = $2
		WHERE visit_id = $3
		RETURNING `+visitColumns, method, amount, visitID)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Visit{}, store.ErrVisitNotFound
		}
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) AssignDoctorRoom(ctx context.Context, visitID, doctorID, room string) (models.Visit, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE visits
		SET doctor_id = COALESCE($1, doctor_id),
			room = COALESCE($2, room)
		WHERE visit_id = $3 AND status <> $4
		RETURNING `+visitColumns, nullIfEmpty(doctorID), nullIfEmpty(room), visitID,
		models.StatusCompleted)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Visit{}, s.diagnoseVisit(ctx, visitID)
		}
		return models.Visit{}, err
	}
	return visit, nil
}

func (s *Store) GetVisit(ctx context.Context, visitID string) (store.VisitDetail, error) {
	var detail store.VisitDetail
	row := s.pool.QueryRow(ctx, `
		SELECT `+visitColumns+` FROM visits WHERE visit_id = $1
	`, visitID)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.VisitDetail{}, store.ErrVisitNotFound
		}
		return store.VisitDetail{}, err
	}
	detail.Visit = visit

	patient, err := s.GetPatient(ctx, visit.PatientID)
	if err != nil {
		return store.VisitDetail{}, err
	}
	detail.Patient = patient

	measurement, found, err := s.measurementForVisit(ctx, visitID)
	if err != nil {
		return store.VisitDetail{}, err
	}
	if found {
		detail.Measurement = &measurement
	}

	prescription, found, err := s.prescriptionForVisit(ctx, visitID)
	if err != nil {
		return store.VisitDetail{}, err
	}
	if found {
		detail.Prescription = &prescription
		sale, saleFound, err := s.saleForPrescription(ctx, prescription.PrescriptionID)
		if err != nil {
			return store.VisitDetail{}, err
		}
		if saleFound {
			detail.Sale = &sale
		}
	}
	return detail, nil
}

func (s *Store) ListQueue(ctx context.Context, filter store.QueueFilter) ([]models.Visit, error) {
	day := filter.Day
	if day == "" {
		day = visitDay(time.Now().UTC(), s.loc)
	}
	query := `SELECT ` + visitColumns + ` FROM visits WHERE visit_date = $1`
	args := []interface{}{day}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $2`
	}
	if filter.DoctorID != "" {
		args = append(args, filter.DoctorID)
		if filter.Status != "" {
			query += ` AND doctor_id = $3`
		} else {
			query += ` AND doctor_id = $2`
		}
	}
	query += ` ORDER BY queue_number ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return visits, nil
}

func findVisitByRequestID(ctx context.Context, tx pgx.Tx, requestID string) (models.Visit, bool, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+visitColumns+` FROM visits WHERE request_id = $1
	`, requestID)
	visit, err := scanVisit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Visit{}, false, nil
		}
		return models.Visit{}, false, err
	}
	return visit, true, nil
}

func ensurePatientExists(ctx context.Context, tx pgx.Tx, patientID string) error {
	var exists bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE patient_id = $1)
	`, patientID)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrPatientNotFound
	}
	return nil
}

// nextQueueNumber hands out per-day sequential numbers through an atomic
// upsert on the counter row, so two registrations in the same instant never
// see the same value. The unique index on (visit_date, queue_number) is the
// backstop for rows written before the counter existed.
func nextQueueNumber(ctx context.Context, tx pgx.Tx, day string) (int, error) {
	var next int
	row := tx.QueryRow(ctx, `
		INSERT INTO queue_sequences (visit_date, next_number)
		VALUES ($1, 1)
		ON CONFLICT (visit_date)
		DO UPDATE SET next_number = queue_sequences.next_number + 1
		RETURNING next_number
	`, day)
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func lockVisitStatus(ctx context.Context, tx pgx.Tx, visitID string) (string, error) {
	var status string
	row := tx.QueryRow(ctx, `
		SELECT status FROM visits WHERE visit_id = $1 FOR UPDATE
	`, visitID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrVisitNotFound
		}
		return "", err
	}
	return status, nil
}

func lockDoctor(ctx context.Context, tx pgx.Tx, doctorID string) error {
	var userID string
	row := tx.QueryRow(ctx, `
		SELECT user_id FROM profiles WHERE user_id = $1 FOR UPDATE
	`, doctorID)
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrAccessDenied
		}
		return err
	}
	return nil
}

func (s *Store) diagnoseVisit(ctx context.Context, visitID string) error {
	var status string
	row := s.pool.QueryRow(ctx, `
		SELECT status FROM visits WHERE visit_id = $1
	`, visitID)
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrVisitNotFound
		}
		return err
	}
	return store.ErrInvalidState
}

func (s *Store) diagnoseCall(ctx context.Context, tx pgx.Tx, visitID, doctorID string) error {
	var status string
	var doctorNull sql.NullString
	row := tx.QueryRow(ctx, `
		SELECT status, doctor_id FROM visits WHERE visit_id = $1
	`, visitID)
	if err := row.Scan(&status, &doctorNull); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrVisitNotFound
		}
		return err
	}
	if !doctorNull.Valid || doctorNull.String != doctorID {
		return store.ErrAccessDenied
	}
	return store.ErrInvalidState
}

func medicineName(ctx context.Context, tx pgx.Tx, medicineID string) (string, error) {
	var name string
	row := tx.QueryRow(ctx, `
		SELECT name FROM medicines WHERE medicine_id = $1
	`, medicineID)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrMedicineNotFound
		}
		return "", err
	}
	return name, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == foreignKeyViolation
	}
	return false
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	text := value.String
	return &text
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullInt64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	number := value.Int64
	return &number
}
