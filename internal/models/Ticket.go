package models

import "time"

const (
	TicketAssigned   = "assigned"
	TicketInProgress = "in_progress"
	TicketCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Ticket is one treatment assignment binding a truck, a driver and a set of bridges.
type Ticket struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TicketNumber     string     `gorm:"uniqueIndex;not null" json:"ticket_number"`
	TMCID            uint       `gorm:"column:tmc_id;not null;index" json:"tmc_id"`
	CreatedBy        uint       `json:"created_by"`
	AssignedDriverID uint       `gorm:"index" json:"assigned_driver_id"`
	TruckID          uint       `gorm:"index" json:"truck_id"`
	Priority         string     `gorm:"not null;default:medium" json:"priority"`
	Status           string     `gorm:"not null;default:assigned;index" json:"status"`
	ScheduledTime    *time.Time `json:"scheduled_time"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	BridgeTreatments []BridgeTreatment `gorm:"foreignKey:TicketID" json:"-"`
}

func (Ticket) TableName() string { return "treatment_tickets" }

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TicketView is the joined read model returned to dispatch screens.
type TicketView struct {
	Ticket
	DriverName  *string `json:"driver_name"`
	TruckNumber *string `json:"truck_number"`
	BridgeCount int64   `json:"bridge_count"`
}
