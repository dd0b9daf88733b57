package models

import "time"

type Medicine struct {
	MedicineID        string    `json:"medicine_id"`
	Name              string    `json:"name"`
	Category          string    `json:"category,omitempty"`
	UnitPrice         int64     `json:"unit_price"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
}
