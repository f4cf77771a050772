package models

import "time"

// TMC is a regional dispatch center. It owns trucks, tickets and material stock.
type TMC struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Region    string    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}

func (TMC) TableName() string { return "tmc_centers" }

// TMCPreference records whether a user monitors a TMC on the statewide dashboard.
type TMCPreference struct {
	UserID       uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	TMCID        uint      `gorm:"column:tmc_id;primaryKey;autoIncrement:false" json:"tmc_id"`
	IsMonitoring bool      `gorm:"not null" json:"is_monitoring"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (TMCPreference) TableName() string { return "user_tmc_preferences" }
