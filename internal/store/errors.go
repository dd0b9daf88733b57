package store

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrVisitNotFound        = errors.New("visit not found")
	ErrMedicineNotFound     = errors.New("medicine not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrInvalidState         = errors.New("invalid visit state")
	ErrQueueConflict        = errors.New("queue number conflict")
	ErrMeasurementExists    = errors.New("measurement already recorded")
	ErrPrescriptionExists   = errors.New("prescription already recorded")
	ErrAlreadyDispensed     = errors.New("prescription already dispensed")
	ErrDoctorBusy           = errors.New("doctor already in consultation")
	ErrMedicineInUse        = errors.New("medicine referenced by prescriptions or sales")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionNotFound      = errors.New("session not found")
	ErrAccessDenied         = errors.New("access denied")
)
