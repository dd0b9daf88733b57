package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"clinicflow/visit-service/internal/models"
	"clinicflow/visit-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func TestQueueNumbersContiguousUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	const workers = 5
	var wg sync.WaitGroup
	results := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
				RequestID: uuid.NewString(),
				PatientID: patientID,
				CreatedAt: createdAt,
			})
			if err != nil {
				errs <- err
				return
			}
			results <- visit.QueueNumber
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("create visit: %v", err)
	}

	var numbers []int
	for n := range results {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	if len(numbers) != workers {
		t.Fatalf("expected %d visits, got %d", workers, len(numbers))
	}
	for i, n := range numbers {
		if n != i+1 {
			t.Fatalf("expected contiguous queue numbers, got %v", numbers)
		}
	}

	var counter int
	row := pool.QueryRow(ctx, `SELECT next_number FROM queue_sequences WHERE visit_date = $1`, "2026-03-02")
	if err := row.Scan(&counter); err != nil {
		t.Fatalf("read queue counter: %v", err)
	}
	if counter != workers {
		t.Fatalf("expected counter %d, got %d", workers, counter)
	}
}

func TestCreateVisitIdempotency(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	requestID := uuid.NewString()
	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first, created, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: requestID,
		PatientID: patientID,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if !created {
		t.Fatalf("expected first call to create")
	}

	second, created, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: requestID,
		PatientID: patientID,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("replay create visit: %v", err)
	}
	if created {
		t.Fatalf("expected replay to return existing visit")
	}
	if first.VisitID != second.VisitID || first.QueueNumber != second.QueueNumber {
		t.Fatalf("expected same visit for duplicate request, got %+v and %+v", first, second)
	}

	var slips int
	row := pool.QueryRow(ctx, `SELECT COUNT(*) FROM print_jobs WHERE kind = 'visit_slip'`)
	if err := row.Scan(&slips); err != nil {
		t.Fatalf("count print jobs: %v", err)
	}
	if slips != 1 {
		t.Fatalf("expected 1 visit slip job, got %d", slips)
	}
}

func TestCreateVisitConcurrentSameRequestID(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	requestID := uuid.NewString()
	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	const workers = 4
	var wg sync.WaitGroup
	visitIDs := make(chan string, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
				RequestID: requestID,
				PatientID: patientID,
				CreatedAt: createdAt,
			})
			if err != nil {
				errs <- err
				return
			}
			visitIDs <- visit.VisitID
		}()
	}
	wg.Wait()
	close(visitIDs)
	close(errs)

	for err := range errs {
		t.Fatalf("create visit: %v", err)
	}

	seen := map[string]bool{}
	for id := range visitIDs {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected one visit for duplicate request_id, got %d", len(seen))
	}

	var count int
	row := pool.QueryRow(ctx, `SELECT COUNT(*) FROM visits WHERE request_id = $1`, requestID)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count visits: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 visit row, got %d", count)
	}
}

func TestQueueNumberRestartsEachClinicDay(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStoreWithLocation(t, ctx, "Asia/Jakarta")
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)

	// 16:30 UTC on March 1 is already March 2 in Jakarta (UTC+7).
	beforeMidnight := time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC)
	first, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: beforeMidnight.Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	second, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: beforeMidnight,
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}

	if first.VisitDate != "2026-03-01" {
		t.Fatalf("expected first visit on 2026-03-01, got %s", first.VisitDate)
	}
	if second.VisitDate != "2026-03-02" {
		t.Fatalf("expected second visit on 2026-03-02, got %s", second.VisitDate)
	}
	if first.QueueNumber != 1 || second.QueueNumber != 1 {
		t.Fatalf("expected both days to start at 1, got %d and %d", first.QueueNumber, second.QueueNumber)
	}
}

func TestFullVisitFlowWithClinicPurchase(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	doctorID := seedStaff(t, ctx, pool, "doctor@clinic.test", models.RoleDoctor)
	nurseID := seedStaff(t, ctx, pool, "nurse@clinic.test", models.RoleEyeMeasurement)
	pharmacistID := seedStaff(t, ctx, pool, "pharmacist@clinic.test", models.RolePharmacy)
	medicineID := seedMedicine(t, ctx, st, "Cendo Xitrol", 10, 25000)

	visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}

	if _, err := st.SendToEyeMeasurement(ctx, visit.VisitID); err != nil {
		t.Fatalf("send to eye measurement: %v", err)
	}

	sphere := -1.25
	visitAfterMeasure, err := st.RecordMeasurement(ctx, store.MeasurementInput{
		VisitID:     visit.VisitID,
		AcuityLeft:  "6/6",
		AcuityRight: "6/9",
		SphereLeft:  &sphere,
		MeasuredBy:  nurseID,
	})
	if err != nil {
		t.Fatalf("record measurement: %v", err)
	}
	if visitAfterMeasure.Status != models.StatusWithDoctor {
		t.Fatalf("expected with_doctor after measurement, got %s", visitAfterMeasure.Status)
	}

	visitInConsult, err := st.CallForConsultation(ctx, visit.VisitID, doctorID)
	if err != nil {
		t.Fatalf("call for consultation: %v", err)
	}
	if visitInConsult.Status != models.StatusInConsultation {
		t.Fatalf("expected in_consultation, got %s", visitInConsult.Status)
	}

	visitAtPharmacy, err := st.CreatePrescription(ctx, store.PrescriptionInput{
		VisitID:       visit.VisitID,
		Diagnosis:     "Konjungtivitis",
		BuyFromClinic: true,
		CreatedBy:     doctorID,
		Medicines: []store.PrescriptionLine{
			{MedicineID: medicineID, Quantity: 2, Dosage: "3x1 tetes"},
		},
	})
	if err != nil {
		t.Fatalf("create prescription: %v", err)
	}
	if visitAtPharmacy.Status != models.StatusPharmacy {
		t.Fatalf("expected pharmacy, got %s", visitAtPharmacy.Status)
	}

	detail, err := st.GetVisit(ctx, visit.VisitID)
	if err != nil {
		t.Fatalf("get visit: %v", err)
	}
	if detail.Prescription == nil {
		t.Fatalf("expected prescription on visit detail")
	}

	dispensed, err := st.Dispense(ctx, store.DispenseInput{
		PrescriptionID: detail.Prescription.PrescriptionID,
		DispensedBy:    pharmacistID,
		Sale: &store.SaleInput{
			PaymentMethod: models.PaymentCash,
			Items: []store.SaleItemInput{
				{MedicineID: medicineID, Quantity: 2, UnitPrice: 25000},
			},
		},
	})
	if err != nil {
		t.Fatalf("dispense: %v", err)
	}
	if dispensed.Visit.Status != models.StatusCompleted {
		t.Fatalf("expected completed after dispense, got %s", dispensed.Visit.Status)
	}
	if dispensed.Visit.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
	if dispensed.Sale == nil || dispensed.Sale.TotalAmount != 50000 {
		t.Fatalf("unexpected sale: %+v", dispensed.Sale)
	}

	var stock int
	row := pool.QueryRow(ctx, `SELECT stock FROM medicines WHERE medicine_id = $1`, medicineID)
	if err := row.Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 8 {
		t.Fatalf("expected stock 8 after dispensing 2, got %d", stock)
	}

	var receipts int
	row = pool.QueryRow(ctx, `SELECT COUNT(*) FROM print_jobs WHERE kind = 'sale_receipt'`)
	if err := row.Scan(&receipts); err != nil {
		t.Fatalf("count receipts: %v", err)
	}
	if receipts != 1 {
		t.Fatalf("expected 1 sale receipt job, got %d", receipts)
	}

	_, err = st.Dispense(ctx, store.DispenseInput{
		PrescriptionID: detail.Prescription.PrescriptionID,
		DispensedBy:    pharmacistID,
	})
	if err != store.ErrAlreadyDispensed {
		t.Fatalf("expected ErrAlreadyDispensed on second dispense, got %v", err)
	}
}

func TestDispenseClampsStockAtZero(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	doctorID := seedStaff(t, ctx, pool, "doctor@clinic.test", models.RoleDoctor)
	pharmacistID := seedStaff(t, ctx, pool, "pharmacist@clinic.test", models.RolePharmacy)
	medicineID := seedMedicine(t, ctx, st, "Timolol", 2, 18000)

	prescriptionID := visitReadyToDispense(t, ctx, st, patientID, doctorID, medicineID, 5)

	if _, err := st.Dispense(ctx, store.DispenseInput{
		PrescriptionID: prescriptionID,
		DispensedBy:    pharmacistID,
	}); err != nil {
		t.Fatalf("dispense: %v", err)
	}

	var stock int
	row := pool.QueryRow(ctx, `SELECT stock FROM medicines WHERE medicine_id = $1`, medicineID)
	if err := row.Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 0 {
		t.Fatalf("expected stock clamped at 0, got %d", stock)
	}
}

func TestPrescriptionWithoutClinicPurchaseCompletesVisit(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	doctorID := seedStaff(t, ctx, pool, "doctor@clinic.test", models.RoleDoctor)

	visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if _, err := st.CallForConsultation(ctx, visit.VisitID, doctorID); err != nil {
		t.Fatalf("call for consultation: %v", err)
	}

	done, err := st.CreatePrescription(ctx, store.PrescriptionInput{
		VisitID:       visit.VisitID,
		Diagnosis:     "Mata kering ringan",
		BuyFromClinic: false,
		CreatedBy:     doctorID,
	})
	if err != nil {
		t.Fatalf("create prescription: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Fatalf("expected completed when not buying from clinic, got %s", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
}

func TestCallForConsultationDoctorBusy(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	doctorID := seedStaff(t, ctx, pool, "doctor@clinic.test", models.RoleDoctor)

	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	second, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}

	if _, err := st.CallForConsultation(ctx, first.VisitID, doctorID); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := st.CallForConsultation(ctx, second.VisitID, doctorID); err != store.ErrDoctorBusy {
		t.Fatalf("expected ErrDoctorBusy, got %v", err)
	}
}

func TestRecordMeasurementRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	nurseID := seedStaff(t, ctx, pool, "nurse@clinic.test", models.RoleEyeMeasurement)

	visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}

	input := store.MeasurementInput{
		VisitID:     visit.VisitID,
		AcuityLeft:  "6/6",
		AcuityRight: "6/6",
		MeasuredBy:  nurseID,
	}
	if _, err := st.RecordMeasurement(ctx, input); err != nil {
		t.Fatalf("record measurement: %v", err)
	}
	if _, err := st.RecordMeasurement(ctx, input); err != store.ErrMeasurementExists {
		t.Fatalf("expected ErrMeasurementExists, got %v", err)
	}
}

func TestRecordMeasurementDuringConsultation(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	doctorID := seedStaff(t, ctx, pool, "doctor@clinic.test", models.RoleDoctor)
	nurseID := seedStaff(t, ctx, pool, "nurse@clinic.test", models.RoleEyeMeasurement)

	visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}

	// Called straight from waiting, skipping the measurement station.
	if _, err := st.CallForConsultation(ctx, visit.VisitID, doctorID); err != nil {
		t.Fatalf("call for consultation: %v", err)
	}

	measured, err := st.RecordMeasurement(ctx, store.MeasurementInput{
		VisitID:     visit.VisitID,
		AcuityLeft:  "6/12",
		AcuityRight: "6/9",
		MeasuredBy:  nurseID,
	})
	if err != nil {
		t.Fatalf("record measurement during consultation: %v", err)
	}
	if measured.Status != models.StatusInConsultation {
		t.Fatalf("expected visit to stay in_consultation, got %s", measured.Status)
	}
}

func TestDeleteMedicineReferencedByPrescription(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	patientID := seedPatient(t, ctx, st)
	doctorID := seedStaff(t, ctx, pool, "doctor@clinic.test", models.RoleDoctor)
	medicineID := seedMedicine(t, ctx, st, "Latanoprost", 5, 90000)

	visitReadyToDispense(t, ctx, st, patientID, doctorID, medicineID, 1)

	if err := st.DeleteMedicine(ctx, medicineID); err != store.ErrMedicineInUse {
		t.Fatalf("expected ErrMedicineInUse, got %v", err)
	}

	unusedID := seedMedicine(t, ctx, st, "Artificial Tears", 3, 15000)
	if err := st.DeleteMedicine(ctx, unusedID); err != nil {
		t.Fatalf("delete unused medicine: %v", err)
	}
}

func TestLoginAndSessionRoles(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	seedStaff(t, ctx, pool, "reception@clinic.test", models.RoleReception)

	result, err := st.Login(ctx, "reception@clinic.test", "rahasia123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(result.Session.Roles) != 1 || result.Session.Roles[0] != models.RoleReception {
		t.Fatalf("unexpected roles: %v", result.Session.Roles)
	}

	session, err := st.GetSession(ctx, result.Session.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.UserID != result.User.UserID {
		t.Fatalf("session user mismatch")
	}

	if _, err := st.Login(ctx, "reception@clinic.test", "salah"); err != store.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func visitReadyToDispense(t *testing.T, ctx context.Context, st *Store, patientID, doctorID, medicineID string, quantity int) string {
	t.Helper()

	visit, _, err := st.CreateVisit(ctx, store.CreateVisitInput{
		RequestID: uuid.NewString(),
		PatientID: patientID,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}
	if _, err := st.CallForConsultation(ctx, visit.VisitID, doctorID); err != nil {
		t.Fatalf("call for consultation: %v", err)
	}
	if _, err := st.CreatePrescription(ctx, store.PrescriptionInput{
		VisitID:       visit.VisitID,
		Diagnosis:     "Glaukoma",
		BuyFromClinic: true,
		CreatedBy:     doctorID,
		Medicines: []store.PrescriptionLine{
			{MedicineID: medicineID, Quantity: quantity},
		},
	}); err != nil {
		t.Fatalf("create prescription: %v", err)
	}

	detail, err := st.GetVisit(ctx, visit.VisitID)
	if err != nil {
		t.Fatalf("get visit: %v", err)
	}
	if detail.Prescription == nil {
		t.Fatalf("expected prescription on visit")
	}
	return detail.Prescription.PrescriptionID
}

func seedPatient(t *testing.T, ctx context.Context, st *Store) string {
	t.Helper()
	patient, err := st.CreatePatient(ctx, store.PatientInput{
		Name:   "Budi Santoso",
		Phone:  "081234567890",
		Age:    42,
		Gender: models.GenderMale,
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return patient.PatientID
}

func seedMedicine(t *testing.T, ctx context.Context, st *Store, name string, stock int, price int64) string {
	t.Helper()
	medicine, err := st.CreateMedicine(ctx, store.MedicineInput{
		Name:              name,
		Category:          "eye drops",
		UnitPrice:         price,
		Stock:             stock,
		LowStockThreshold: 2,
	})
	if err != nil {
		t.Fatalf("create medicine: %v", err)
	}
	return medicine.MedicineID
}

func seedStaff(t *testing.T, ctx context.Context, pool *pgxpool.Pool, email, role string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	userID := uuid.NewString()
	if _, err := pool.Exec(ctx, `
		INSERT INTO profiles (user_id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, userID, "Staff "+role, email, string(hash)); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	`, userID, role); err != nil {
		t.Fatalf("insert role: %v", err)
	}
	return userID
}

func setupTestStore(t *testing.T, ctx context.Context) (*Store, *pgxpool.Pool, func()) {
	return setupTestStoreWithLocation(t, ctx, "UTC")
}

func setupTestStoreWithLocation(t *testing.T, ctx context.Context, tz string) (*Store, *pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	location, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := createSchema(ctx, dsn, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := newPoolWithSchema(ctx, dsn, schema)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	store := NewStore(pool, Options{Location: location})
	cleanup := func() {
		pool.Close()
		_ = dropSchema(context.Background(), dsn, schema)
	}
	return store, pool, cleanup
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	return err
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
	return err
}

func newPoolWithSchema(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	return pgxpool.NewWithConfig(ctx, cfg)
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	dir := filepath.Join("..", "..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			return err
		}
	}
	return nil
}
