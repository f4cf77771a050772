package models

import "time"

const (
	TruckAvailable   = "available"
	TruckAssigned    = "assigned"
	TruckMaintenance = "maintenance"
)

// Truck is a fleet resource. Status is the single source of truth for reservation.
type Truck struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TruckNumber  string    `gorm:"not null;uniqueIndex:idx_truck_tmc_number,priority:2" json:"truck_number"`
	TMCID        uint      `gorm:"column:tmc_id;not null;uniqueIndex:idx_truck_tmc_number,priority:1" json:"tmc_id"`
	Status       string    `gorm:"not null;default:available;index" json:"status"`
	CapacityTons float64   `json:"capacity_tons"`
	CreatedAt    time.Time `json:"created_at"`
}

func ValidTruckStatus(status string) bool {
	switch status {
	case TruckAvailable, TruckAssigned, TruckMaintenance:
		return true
	}
	return false
}
