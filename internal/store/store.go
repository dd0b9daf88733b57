package store

import (
	"context"
	"encoding/json"
	"time"

	"clinicflow/visit-service/internal/models"
)

type CreateVisitInput struct {
	RequestID string
	PatientID string
	DoctorID  string
	Room      string
	CreatedAt time.Time
}

type MeasurementInput struct {
	VisitID       string
	AcuityLeft    string
	AcuityRight   string
	SphereLeft    *float64
	SphereRight   *float64
	CylinderLeft  *float64
	CylinderRight *float64
	AxisLeft      *int
	AxisRight     *int
	PupilDistance *float64
	PressureLeft  *float64
	PressureRight *float64
	Notes         string
	MeasuredBy    string
}

type PrescriptionLine struct {
	MedicineID string
	Quantity   int
	Dosage     string
}

type PrescriptionInput struct {
	VisitID       string
	Diagnosis     string
	FollowUp      string
	BuyFromClinic bool
	Medicines     []PrescriptionLine
	CreatedBy     string
}

type SaleItemInput struct {
	MedicineID string
	Quantity   int
	UnitPrice  int64
}

type SaleInput struct {
	PaymentMethod string
	Items         []SaleItemInput
}

type DispenseInput struct {
	PrescriptionID string
	DispensedBy    string
	Sale           *SaleInput
}

type PatientInput struct {
	Name   string
	Phone  string
	Age    int
	Gender string
}

type MedicineInput struct {
	Name              string
	Category          string
	UnitPrice         int64
	Stock             int
	LowStockThreshold int
}

type QueueFilter struct {
	Day      string
	Status   string
	DoctorID string
}

// VisitDetail is the aggregate a station refreshes after a mutation: the visit
// plus whatever downstream records exist for it.
type VisitDetail struct {
	Visit        models.Visit           `json:"visit"`
	Patient      models.Patient         `json:"patient"`
	Measurement  *models.EyeMeasurement `json:"measurement,omitempty"`
	Prescription *models.Prescription   `json:"prescription,omitempty"`
	Sale         *models.PharmacySale   `json:"sale,omitempty"`
}

type Session struct {
	SessionID string
	UserID    string
	Name      string
	Roles     []string
	ExpiresAt time.Time
}

type LoginResult struct {
	User    models.Staff
	Session Session
}

type DailySummary struct {
	Day             string           `json:"day"`
	TotalVisits     int              `json:"total_visits"`
	ByStatus        map[string]int   `json:"by_status"`
	PaymentsByMethod map[string]int64 `json:"payments_by_method"`
	PharmacyRevenue int64            `json:"pharmacy_revenue"`
	LowStockCount   int              `json:"low_stock_count"`
}

type VisitStore interface {
	CreateVisit(ctx context.Context, input CreateVisitInput) (models.Visit, bool, error)
	GetVisit(ctx context.Context, visitID string) (VisitDetail, error)
	ListQueue(ctx context.Context, filter QueueFilter) ([]models.Visit, error)
	SendToEyeMeasurement(ctx context.Context, visitID string) (models.Visit, error)
	RecordMeasurement(ctx context.Context, input MeasurementInput) (models.Visit, error)
	CallForConsultation(ctx context.Context, visitID, doctorID string) (models.Visit, error)
	CreatePrescription(ctx context.Context, input PrescriptionInput) (models.Visit, error)
	Dispense(ctx context.Context, input DispenseInput) (VisitDetail, error)
	RecordPayment(ctx context.Context, visitID, method string, amount int64) (models.Visit, error)
	AssignDoctorRoom(ctx context.Context, visitID, doctorID, room string) (models.Visit, error)
	GetPrescription(ctx context.Context, prescriptionID string) (models.Prescription, error)

	CreatePatient(ctx context.Context, input PatientInput) (models.Patient, error)
	GetPatient(ctx context.Context, patientID string) (models.Patient, error)
	ListPatients(ctx context.Context, search string) ([]models.Patient, error)

	CreateMedicine(ctx context.Context, input MedicineInput) (models.Medicine, error)
	UpdateMedicine(ctx context.Context, medicineID string, input MedicineInput) (models.Medicine, error)
	DeleteMedicine(ctx context.Context, medicineID string) error
	RestockMedicine(ctx context.Context, medicineID string, quantity int) (models.Medicine, error)
	ListMedicines(ctx context.Context) ([]models.Medicine, error)
	ListLowStock(ctx context.Context) ([]models.Medicine, error)

	Login(ctx context.Context, email, password string) (LoginResult, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)

	DailySummary(ctx context.Context, day string) (DailySummary, error)
}

type PrintJob struct {
	JobID     string          `json:"job_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}

// PrintQueue is the slice of the store the print worker polls.
type PrintQueue interface {
	ClaimPrintJobs(ctx context.Context, batchSize int) ([]PrintJob, error)
	MarkPrintJobDone(ctx context.Context, jobID string) error
	MarkPrintJobFailed(ctx context.Context, jobID, reason string, dead bool) error
}
