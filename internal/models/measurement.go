package models

import "time"

// EyeMeasurement holds one refraction workup per visit. Sphere, cylinder and
// axis are recorded per eye; acuity is free text ("6/6", "20/40", ...).
type EyeMeasurement struct {
	MeasurementID string    `json:"measurement_id"`
	VisitID       string    `json:"visit_id"`
	AcuityLeft    string    `json:"acuity_left,omitempty"`
	AcuityRight   string    `json:"acuity_right,omitempty"`
	SphereLeft    *float64  `json:"sphere_left,omitempty"`
	SphereRight   *float64  `json:"sphere_right,omitempty"`
	CylinderLeft  *float64  `json:"cylinder_left,omitempty"`
	CylinderRight *float64  `json:"cylinder_right,omitempty"`
	AxisLeft      *int      `json:"axis_left,omitempty"`
	AxisRight     *int      `json:"axis_right,omitempty"`
	PupilDistance *float64  `json:"pupil_distance,omitempty"`
	PressureLeft  *float64  `json:"pressure_left,omitempty"`
	PressureRight *float64  `json:"pressure_right,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	MeasuredBy    string    `json:"measured_by"`
	CreatedAt     time.Time `json:"created_at"`
}
