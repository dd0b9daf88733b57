package models

import "time"

type Staff struct {
	UserID  string    `json:"user_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Roles   []string  `json:"roles"`
	Created time.Time `json:"created_at"`
}

const (
	RoleReception      = "reception"
	RoleEyeMeasurement = "eye_measurement"
	RoleDoctor         = "doctor"
	RolePharmacy       = "pharmacy"
	RoleAdmin          = "admin"
)
