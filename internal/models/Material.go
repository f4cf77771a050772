package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaterialSalt  = "salt"
	MaterialSand  = "sand"
	MaterialBrine = "brine"
)

// MaterialTypes lists every stocked material, in seeding order.
var MaterialTypes = []string{MaterialSalt, MaterialSand, MaterialBrine}

// Material is the stock of one material type at one TMC. Quantity may go negative.
type Material struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	TMCID        uint            `gorm:"column:tmc_id;not null;uniqueIndex:idx_material_tmc_type,priority:1" json:"tmc_id"`
	MaterialType string          `gorm:"not null;uniqueIndex:idx_material_tmc_type,priority:2" json:"material_type"`
	QuantityTons decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"quantity_tons"`
	LastUpdated  time.Time       `json:"last_updated"`
}

func ValidMaterial(m string) bool {
	for _, t := range MaterialTypes {
		if t == m {
			return true
		}
	}
	return false
}
