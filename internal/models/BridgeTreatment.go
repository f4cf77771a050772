package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BridgeTreatment links a ticket to one bridge. The treatment fields stay null
// until usage is recorded, and are written exactly once. A bridge appears at
// most once per ticket.
type BridgeTreatment struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	TicketID         uint                `gorm:"not null;uniqueIndex:idx_bridge_treatment_ticket_bridge,priority:1" json:"ticket_id"`
	BridgeID         string              `gorm:"not null;index;uniqueIndex:idx_bridge_treatment_ticket_bridge,priority:2" json:"bridge_id"`
	TreatmentType    *string             `json:"treatment_type"`
	MaterialUsedTons decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"material_used_tons"`
	TreatedAt        *time.Time          `json:"treated_at"`
}

// BridgeStatus is the public view of a bridge's latest treatment.
type BridgeStatus struct {
	BridgeID      string     `json:"bridge_id"`
	TreatedAt     *time.Time `json:"treated_at"`
	TreatmentType *string    `json:"treatment_type"`
	TicketStatus  *string    `json:"ticket_status"`
	ScheduledTime *time.Time `json:"scheduled_time"`
}
