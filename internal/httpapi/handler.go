package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"clinicflow/visit-service/internal/models"
	"clinicflow/visit-service/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store store.VisitStore
}

func NewHandler(store store.VisitStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/login", h.handleLogin)
	mux.HandleFunc("/api/patients", h.handlePatients)
	mux.HandleFunc("/api/patients/", h.handlePatientByID)
	mux.HandleFunc("/api/visits", h.handleVisits)
	mux.HandleFunc("/api/visits/", h.handleVisitByID)
	mux.HandleFunc("/api/queue", h.handleQueue)
	mux.HandleFunc("/api/prescriptions/", h.handlePrescriptionByID)
	mux.HandleFunc("/api/medicines", h.handleMedicines)
	mux.HandleFunc("/api/medicines/low-stock", h.handleLowStock)
	mux.HandleFunc("/api/medicines/", h.handleMedicineByID)
	mux.HandleFunc("/api/reports/daily", h.handleDailyReport)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	result, err := h.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createPatientRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

func (h *Handler) handlePatients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if _, ok := requireRole(w, r, models.RoleReception, models.RoleAdmin); !ok {
			return
		}
		var req createPatientRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Phone = strings.TrimSpace(req.Phone)
		req.Gender = strings.TrimSpace(req.Gender)
		if req.Name == "" {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		if req.Age < 0 || req.Age > 150 {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "age must be between 0 and 150")
			return
		}
		if req.Gender == "" {
			req.Gender = models.GenderOther
		}
		if !models.ValidGender(req.Gender) {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "gender must be male, female, or other")
			return
		}

		patient, err := h.store.CreatePatient(r.Context(), store.PatientInput{
			Name:   req.Name,
			Phone:  req.Phone,
			Age:    req.Age,
			Gender: req.Gender,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, patient)

	case http.MethodGet:
		if _, ok := sessionFromContext(r.Context()); !ok {
			writeError(w, "", http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		search := strings.TrimSpace(r.URL.Query().Get("search"))
		patients, err := h.store.ListPatients(r.Context(), search)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, patients)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePatientByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	patientID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/patients/"), "/")
	if !isValidUUID(patientID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "patient_id must be a UUID")
		return
	}
	patient, err := h.store.GetPatient(r.Context(), patientID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

type createVisitRequest struct {
	RequestID string `json:"request_id"`
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Room      string `json:"room"`
}

func (h *Handler) handleVisits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleReception, models.RoleAdmin); !ok {
		return
	}

	var req createVisitRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	req.PatientID = strings.TrimSpace(req.PatientID)
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Room = strings.TrimSpace(req.Room)

	if req.RequestID == "" || req.PatientID == "" {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and patient_id are required")
		return
	}
	if !isValidUUID(req.RequestID) || !isValidUUID(req.PatientID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "request_id and patient_id must be UUIDs")
		return
	}
	if req.DoctorID != "" && !isValidUUID(req.DoctorID) {
		writeError(w, req.RequestID, http.StatusBadRequest, "invalid_request", "doctor_id must be a UUID when provided")
		return
	}

	visit, _, err := h.store.CreateVisit(r.Context(), store.CreateVisitInput{
		RequestID: req.RequestID,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Room:      req.Room,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, req.RequestID, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

func (h *Handler) handleVisitByID(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/visits/"), "/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetVisit(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleVisitAction(w, r, parts[0], parts[2])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetVisit(w http.ResponseWriter, r *http.Request, visitID string) {
	if _, ok := sessionFromContext(r.Context()); !ok {
		writeError(w, "", http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	if !isValidUUID(visitID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "visit_id must be a UUID")
		return
	}
	detail, err := h.store.GetVisit(r.Context(), visitID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleVisitAction(w http.ResponseWriter, r *http.Request, visitID, action string) {
	if !isValidUUID(visitID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "visit_id must be a UUID")
		return
	}

	switch action {
	case "send-to-eye-measurement":
		h.handleSendToEyeMeasurement(w, r, visitID)
	case "measurement":
		h.handleRecordMeasurement(w, r, visitID)
	case "call":
		h.handleCallForConsultation(w, r, visitID)
	case "prescribe":
		h.handleCreatePrescription(w, r, visitID)
	case "payment":
		h.handleRecordPayment(w, r, visitID)
	case "assign":
		h.handleAssignDoctorRoom(w, r, visitID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleSendToEyeMeasurement(w http.ResponseWriter, r *http.Request, visitID string) {
	if _, ok := requireRole(w, r, models.RoleReception, models.RoleEyeMeasurement, models.RoleAdmin); !ok {
		return
	}
	visit, err := h.store.SendToEyeMeasurement(r.Context(), visitID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type measurementRequest struct {
	AcuityLeft    string   `json:"acuity_left"`
	AcuityRight   string   `json:"acuity_right"`
	SphereLeft    *float64 `json:"sphere_left"`
	SphereRight   *float64 `json:"sphere_right"`
	CylinderLeft  *float64 `json:"cylinder_left"`
	CylinderRight *float64 `json:"cylinder_right"`
	AxisLeft      *int     `json:"axis_left"`
	AxisRight     *int     `json:"axis_right"`
	PupilDistance *float64 `json:"pupil_distance"`
	PressureLeft  *float64 `json:"pressure_left"`
	PressureRight *float64 `json:"pressure_right"`
	Notes         string   `json:"notes"`
}

func (h *Handler) handleRecordMeasurement(w http.ResponseWriter, r *http.Request, visitID string) {
	session, ok := requireRole(w, r, models.RoleEyeMeasurement, models.RoleAdmin)
	if !ok {
		return
	}

	var req measurementRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	visit, err := h.store.RecordMeasurement(r.Context(), store.MeasurementInput{
		VisitID:       visitID,
		AcuityLeft:    strings.TrimSpace(req.AcuityLeft),
		AcuityRight:   strings.TrimSpace(req.AcuityRight),
		SphereLeft:    req.SphereLeft,
		SphereRight:   req.SphereRight,
		CylinderLeft:  req.CylinderLeft,
		CylinderRight: req.CylinderRight,
		AxisLeft:      req.AxisLeft,
		AxisRight:     req.AxisRight,
		PupilDistance: req.PupilDistance,
		PressureLeft:  req.PressureLeft,
		PressureRight: req.PressureRight,
		Notes:         strings.TrimSpace(req.Notes),
		MeasuredBy:    session.UserID,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type callRequest struct {
	DoctorID string `json:"doctor_id"`
}

func (h *Handler) handleCallForConsultation(w http.ResponseWriter, r *http.Request, visitID string) {
	session, ok := requireRole(w, r, models.RoleDoctor, models.RoleAdmin)
	if !ok {
		return
	}

	var req callRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	doctorID := strings.TrimSpace(req.DoctorID)
	if doctorID == "" {
		doctorID = session.UserID
	}
	if !isValidUUID(doctorID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "doctor_id must be a UUID")
		return
	}

	visit, err := h.store.CallForConsultation(r.Context(), visitID, doctorID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type prescribeRequest struct {
	Diagnosis     string `json:"diagnosis"`
	FollowUp      string `json:"follow_up"`
	BuyFromClinic bool   `json:"buy_from_clinic"`
	Medicines     []struct {
		MedicineID string `json:"medicine_id"`
		Quantity   int    `json:"quantity"`
		Dosage     string `json:"dosage"`
	} `json:"medicines"`
}

func (h *Handler) handleCreatePrescription(w http.ResponseWriter, r *http.Request, visitID string) {
	session, ok := requireRole(w, r, models.RoleDoctor, models.RoleAdmin)
	if !ok {
		return
	}

	var req prescribeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Diagnosis = strings.TrimSpace(req.Diagnosis)
	if req.Diagnosis == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "diagnosis is required")
		return
	}

	input := store.PrescriptionInput{
		VisitID:       visitID,
		Diagnosis:     req.Diagnosis,
		FollowUp:      strings.TrimSpace(req.FollowUp),
		BuyFromClinic: req.BuyFromClinic,
		CreatedBy:     session.UserID,
	}
	for _, line := range req.Medicines {
		medicineID := strings.TrimSpace(line.MedicineID)
		if !isValidUUID(medicineID) {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "medicine_id must be a UUID")
			return
		}
		if line.Quantity <= 0 {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "quantity must be positive")
			return
		}
		input.Medicines = append(input.Medicines, store.PrescriptionLine{
			MedicineID: medicineID,
			Quantity:   line.Quantity,
			Dosage:     strings.TrimSpace(line.Dosage),
		})
	}

	visit, err := h.store.CreatePrescription(r.Context(), input)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type paymentRequest struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request, visitID string) {
	if _, ok := requireRole(w, r, models.RoleReception, models.RoleAdmin); !ok {
		return
	}

	var req paymentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Method = strings.TrimSpace(req.Method)
	if !models.ValidPaymentMethod(req.Method) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "method must be cash, card, or mobile")
		return
	}
	if req.Amount < 0 {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "amount must not be negative")
		return
	}

	visit, err := h.store.RecordPayment(r.Context(), visitID, req.Method, req.Amount)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

type assignRequest struct {
	DoctorID string `json:"doctor_id"`
	Room     string `json:"room"`
}

func (h *Handler) handleAssignDoctorRoom(w http.ResponseWriter, r *http.Request, visitID string) {
	if _, ok := requireRole(w, r, models.RoleReception, models.RoleAdmin); !ok {
		return
	}

	var req assignRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Room = strings.TrimSpace(req.Room)
	if req.DoctorID == "" && req.Room == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "doctor_id or room is required")
		return
	}
	if req.DoctorID != "" && !isValidUUID(req.DoctorID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "doctor_id must be a UUID")
		return
	}

	visit, err := h.store.AssignDoctorRoom(r.Context(), visitID, req.DoctorID, req.Room)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := sessionFromContext(r.Context()); !ok {
		writeError(w, "", http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	filter := store.QueueFilter{
		Day:      strings.TrimSpace(r.URL.Query().Get("date")),
		Status:   strings.TrimSpace(r.URL.Query().Get("status")),
		DoctorID: strings.TrimSpace(r.URL.Query().Get("doctor_id")),
	}
	if filter.Day != "" {
		if _, err := time.Parse("2006-01-02", filter.Day); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
	}
	if filter.DoctorID != "" && !isValidUUID(filter.DoctorID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "doctor_id must be a UUID")
		return
	}

	visits, err := h.store.ListQueue(r.Context(), filter)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, visits)
}

func (h *Handler) handlePrescriptionByID(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/prescriptions/"), "/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGetPrescription(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "actions" && parts[2] == "dispense" && r.Method == http.MethodPost:
		h.handleDispense(w, r, parts[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetPrescription(w http.ResponseWriter, r *http.Request, prescriptionID string) {
	if _, ok := requireRole(w, r, models.RoleDoctor, models.RolePharmacy, models.RoleAdmin); !ok {
		return
	}
	if !isValidUUID(prescriptionID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "prescription_id must be a UUID")
		return
	}
	prescription, err := h.store.GetPrescription(r.Context(), prescriptionID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, prescription)
}

type dispenseRequest struct {
	Sale *struct {
		PaymentMethod string `json:"payment_method"`
		Items         []struct {
			MedicineID string `json:"medicine_id"`
			Quantity   int    `json:"quantity"`
			UnitPrice  int64  `json:"unit_price"`
		} `json:"items"`
	} `json:"sale"`
}

func (h *Handler) handleDispense(w http.ResponseWriter, r *http.Request, prescriptionID string) {
	session, ok := requireRole(w, r, models.RolePharmacy, models.RoleAdmin)
	if !ok {
		return
	}
	if !isValidUUID(prescriptionID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "prescription_id must be a UUID")
		return
	}

	var req dispenseRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	input := store.DispenseInput{
		PrescriptionID: prescriptionID,
		DispensedBy:    session.UserID,
	}
	if req.Sale != nil {
		method := strings.TrimSpace(req.Sale.PaymentMethod)
		if !models.ValidPaymentMethod(method) {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "payment_method must be cash, card, or mobile")
			return
		}
		sale := store.SaleInput{PaymentMethod: method}
		for _, item := range req.Sale.Items {
			medicineID := strings.TrimSpace(item.MedicineID)
			if !isValidUUID(medicineID) {
				writeError(w, "", http.StatusBadRequest, "invalid_request", "medicine_id must be a UUID")
				return
			}
			if item.Quantity <= 0 || item.UnitPrice < 0 {
				writeError(w, "", http.StatusBadRequest, "invalid_request", "quantity must be positive and unit_price must not be negative")
				return
			}
			sale.Items = append(sale.Items, store.SaleItemInput{
				MedicineID: medicineID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
			})
		}
		input.Sale = &sale
	}

	detail, err := h.store.Dispense(r.Context(), input)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type medicineRequest struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	UnitPrice         int64  `json:"unit_price"`
	Stock             int    `json:"stock"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

func (req *medicineRequest) validate(w http.ResponseWriter) bool {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "name is required")
		return false
	}
	if req.UnitPrice < 0 || req.Stock < 0 || req.LowStockThreshold < 0 {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "unit_price, stock, and low_stock_threshold must not be negative")
		return false
	}
	return true
}

func (h *Handler) handleMedicines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if _, ok := requireRole(w, r, models.RolePharmacy, models.RoleAdmin); !ok {
			return
		}
		var req medicineRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if !req.validate(w) {
			return
		}
		medicine, err := h.store.CreateMedicine(r.Context(), store.MedicineInput{
			Name:              req.Name,
			Category:          req.Category,
			UnitPrice:         req.UnitPrice,
			Stock:             req.Stock,
			LowStockThreshold: req.LowStockThreshold,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, medicine)

	case http.MethodGet:
		if _, ok := sessionFromContext(r.Context()); !ok {
			writeError(w, "", http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		medicines, err := h.store.ListMedicines(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, medicines)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RolePharmacy, models.RoleAdmin); !ok {
		return
	}
	medicines, err := h.store.ListLowStock(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, medicines)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleMedicineByID(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/medicines/"), "/")
	parts := strings.Split(path, "/")
	medicineID := parts[0]
	if !isValidUUID(medicineID) {
		writeError(w, "", http.StatusBadRequest, "invalid_request", "medicine_id must be a UUID")
		return
	}

	if len(parts) == 3 && parts[1] == "actions" && parts[2] == "restock" && r.Method == http.MethodPost {
		if _, ok := requireRole(w, r, models.RolePharmacy, models.RoleAdmin); !ok {
			return
		}
		var req restockRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if req.Quantity <= 0 {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "quantity must be positive")
			return
		}
		medicine, err := h.store.RestockMedicine(r.Context(), medicineID, req.Quantity)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, medicine)
		return
	}

	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodPut:
		if _, ok := requireRole(w, r, models.RolePharmacy, models.RoleAdmin); !ok {
			return
		}
		var req medicineRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		if !req.validate(w) {
			return
		}
		medicine, err := h.store.UpdateMedicine(r.Context(), medicineID, store.MedicineInput{
			Name:              req.Name,
			Category:          req.Category,
			UnitPrice:         req.UnitPrice,
			LowStockThreshold: req.LowStockThreshold,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, medicine)

	case http.MethodDelete:
		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}
		if err := h.store.DeleteMedicine(r.Context(), medicineID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, "", status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	day := strings.TrimSpace(r.URL.Query().Get("date"))
	if day != "" {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			writeError(w, "", http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
	}

	summary, err := h.store.DailySummary(r.Context(), day)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, "", status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrPatientNotFound):
		return http.StatusNotFound, "patient_not_found", "patient not found"
	case errors.Is(err, store.ErrVisitNotFound):
		return http.StatusNotFound, "visit_not_found", "visit not found"
	case errors.Is(err, store.ErrMedicineNotFound):
		return http.StatusNotFound, "medicine_not_found", "medicine not found"
	case errors.Is(err, store.ErrPrescriptionNotFound):
		return http.StatusNotFound, "prescription_not_found", "prescription not found"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "visit state does not allow this action"
	case errors.Is(err, store.ErrQueueConflict):
		return http.StatusConflict, "queue_conflict", "queue number allocation failed, retry the registration"
	case errors.Is(err, store.ErrMeasurementExists):
		return http.StatusConflict, "measurement_exists", "a measurement was already recorded for this visit"
	case errors.Is(err, store.ErrPrescriptionExists):
		return http.StatusConflict, "prescription_exists", "a prescription was already recorded for this visit"
	case errors.Is(err, store.ErrAlreadyDispensed):
		return http.StatusConflict, "already_dispensed", "prescription was already dispensed"
	case errors.Is(err, store.ErrDoctorBusy):
		return http.StatusConflict, "doctor_busy", "doctor already has a patient in consultation"
	case errors.Is(err, store.ErrMedicineInUse):
		return http.StatusConflict, "medicine_in_use", "medicine is referenced by prescriptions or sales"
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid email or password"
	case errors.Is(err, store.ErrSessionNotFound):
		return http.StatusUnauthorized, "unauthorized", "invalid session"
	case errors.Is(err, store.ErrAccessDenied):
		return http.StatusForbidden, "access_denied", "access denied"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
