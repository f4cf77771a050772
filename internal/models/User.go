package models

import "time"

const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleDriver     = "driver"
)

// User is an authenticated actor. Drivers are users with the driver role.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null" json:"role"` // "admin", "dispatcher", "driver"
	TMCID        *uint     `gorm:"column:tmc_id;index" json:"tmc_id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidRole reports whether role is one the access policy knows about.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDispatcher, RoleDriver:
		return true
	}
	return false
}
