package models

import "time"

type Visit struct {
	VisitID       string     `json:"visit_id"`
	PatientID     string     `json:"patient_id"`
	QueueNumber   int        `json:"queue_number"`
	VisitDate     string     `json:"visit_date"`
	Status        string     `json:"status"`
	DoctorID      *string    `json:"doctor_id,omitempty"`
	Room          *string    `json:"room,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	PaymentAmount *int64     `json:"payment_amount,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	RequestID     string     `json:"request_id,omitempty"`
}

const (
	StatusWaiting        = "waiting"
	StatusEyeMeasurement = "eye_measurement"
	StatusWithDoctor     = "with_doctor"
	StatusInConsultation = "in_consultation"
	StatusPharmacy       = "pharmacy"
	StatusCompleted      = "completed"

	// Legacy values still present in older rows.
	StatusRegistered = "registered"
	StatusPrescribed = "prescribed"
)

const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentMobile = "mobile"
)

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	default:
		return false
	}
}
