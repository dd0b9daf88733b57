package models

import "time"

type Prescription struct {
	PrescriptionID string     `json:"prescription_id"`
	VisitID        string     `json:"visit_id"`
	Diagnosis      string     `json:"diagnosis"`
	FollowUp       string     `json:"follow_up,omitempty"`
	BuyFromClinic  bool       `json:"buy_from_clinic"`
	Dispensed      bool       `json:"dispensed"`
	DispensedBy    *string    `json:"dispensed_by,omitempty"`
	DispensedAt    *time.Time `json:"dispensed_at,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	Medicines      []PrescriptionMedicine `json:"medicines,omitempty"`
}

// PrescriptionMedicine snapshots the medicine name at prescribing time so the
// printed sheet stays correct after inventory edits.
type PrescriptionMedicine struct {
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
	Dosage       string `json:"dosage,omitempty"`
}

type PharmacySale struct {
	SaleID         string     `json:"sale_id"`
	PrescriptionID string     `json:"prescription_id"`
	TotalAmount    int64      `json:"total_amount"`
	PaymentMethod  string     `json:"payment_method"`
	Paid           bool       `json:"paid"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	Items          []PharmacySaleItem `json:"items,omitempty"`
}

type PharmacySaleItem struct {
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
	LineTotal    int64  `json:"line_total"`
}
