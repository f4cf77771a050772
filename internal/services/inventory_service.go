package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

// TreatmentUsageInput records material spread on one bridge of a ticket.
type TreatmentUsageInput struct {
	TicketID     uint
	BridgeID     string
	MaterialType string
	QuantityTons decimal.Decimal
}

// InventoryService is the material ledger. Quantities move by signed deltas and
// have no floor.
type InventoryService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db, now: time.Now}
}

func (s *InventoryService) GetInventory(ctx context.Context, tmcID uint) ([]models.Material, error) {
	if tmcID == 0 {
		return nil, apperrors.Validation("tmcId is required")
	}
	rows := []models.Material{}
	if err := s.db.WithContext(ctx).Where("tmc_id = ?", tmcID).Find(&rows).Error; err != nil {
		return nil, apperrors.Internal(err, "could not load inventory")
	}
	return rows, nil
}

// ApplyUsage subtracts qty from the region's stock of material.
func (s *InventoryService) ApplyUsage(ctx context.Context, tmcID uint, material string, qty decimal.Decimal) (*models.Material, error) {
	if err := validateDelta(tmcID, material, qty); err != nil {
		return nil, err
	}
	return s.applyInTx(ctx, tmcID, material, qty.Neg())
}

// ApplyRestock adds qty to the region's stock of material.
func (s *InventoryService) ApplyRestock(ctx context.Context, tmcID uint, material string, qty decimal.Decimal) (*models.Material, error) {
	if err := validateDelta(tmcID, material, qty); err != nil {
		return nil, err
	}
	return s.applyInTx(ctx, tmcID, material, qty)
}

// SetQuantity overwrites a record, for manual corrections.
func (s *InventoryService) SetQuantity(ctx context.Context, recordID uint, qty decimal.Decimal) (*models.Material, error) {
	var record models.Material
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Material{}).Where("id = ?", recordID).Updates(map[string]interface{}{
			"quantity_tons": qty,
			"last_updated":  s.now(),
		})
		if res.Error != nil {
			return apperrors.Internal(res.Error, "could not update material")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("material record %d not found", recordID)
		}
		return tx.First(&record, recordID).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"material_id": recordID,
		"quantity":    qty.String(),
	}).Info("Material quantity overwritten")
	return &record, nil
}

// RecordTreatmentUsage stamps the bridge row and deducts the material from the
// ticket's TMC. Both happen or neither does. The returned record is the
// updated inventory row.
func (s *InventoryService) RecordTreatmentUsage(ctx context.Context, in TreatmentUsageInput) (*models.Material, error) {
	if in.TicketID == 0 || in.BridgeID == "" {
		return nil, apperrors.Validation("ticketId and bridgeId are required")
	}
	if !models.ValidMaterial(in.MaterialType) {
		return nil, apperrors.Validation("invalid material type %q", in.MaterialType)
	}
	if !in.QuantityTons.IsPositive() {
		return nil, apperrors.Validation("quantityTons must be positive")
	}

	var record *models.Material
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		res := tx.Model(&models.BridgeTreatment{}).
			Where("ticket_id = ? AND bridge_id = ? AND treated_at IS NULL", in.TicketID, in.BridgeID).
			Updates(map[string]interface{}{
				"treatment_type":     in.MaterialType,
				"material_used_tons": in.QuantityTons,
				"treated_at":         now,
			})
		if res.Error != nil {
			return apperrors.Internal(res.Error, "could not record bridge treatment")
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.BridgeTreatment{}).
				Where("ticket_id = ? AND bridge_id = ?", in.TicketID, in.BridgeID).
				Count(&n).Error; err != nil {
				return apperrors.Internal(err, "could not load bridge treatment")
			}
			if n == 0 {
				return apperrors.NotFound("bridge %s is not part of ticket %d", in.BridgeID, in.TicketID)
			}
			return apperrors.Conflict("usage for bridge %s on ticket %d is already recorded", in.BridgeID, in.TicketID)
		}

		var ticket models.Ticket
		if err := tx.Select("id", "tmc_id").First(&ticket, in.TicketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("ticket %d not found", in.TicketID)
			}
			return apperrors.Internal(err, "could not load ticket")
		}

		updated, err := applyDelta(tx, ticket.TMCID, in.MaterialType, in.QuantityTons.Neg(), now)
		if err != nil {
			return err
		}
		record = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"ticket_id": in.TicketID,
		"bridge_id": in.BridgeID,
		"material":  in.MaterialType,
		"quantity":  in.QuantityTons.String(),
	}).Info("Treatment usage recorded")
	return record, nil
}

// EnsureRegionStock creates a zero row for every material the TMC lacks.
func (s *InventoryService) EnsureRegionStock(ctx context.Context, tmcID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, material := range models.MaterialTypes {
			row := models.Material{
				TMCID:        tmcID,
				MaterialType: material,
				QuantityTons: decimal.Zero,
				LastUpdated:  s.now(),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return apperrors.Internal(err, "could not seed material stock")
			}
		}
		return nil
	})
}

func (s *InventoryService) applyInTx(ctx context.Context, tmcID uint, material string, delta decimal.Decimal) (*models.Material, error) {
	var record *models.Material
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err := applyDelta(tx, tmcID, material, delta, s.now())
		record = updated
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"tmc_id":   tmcID,
		"material": material,
		"delta":    delta.String(),
		"quantity": record.QuantityTons.String(),
	}).Info("Material stock adjusted")
	return record, nil
}

// applyDelta is a single UPDATE so concurrent deltas never lose each other.
func applyDelta(tx *gorm.DB, tmcID uint, material string, delta decimal.Decimal, now time.Time) (*models.Material, error) {
	res := tx.Model(&models.Material{}).
		Where("tmc_id = ? AND material_type = ?", tmcID, material).
		Updates(map[string]interface{}{
			"quantity_tons": gorm.Expr("quantity_tons + ?", delta),
			"last_updated":  now,
		})
	if res.Error != nil {
		return nil, apperrors.Internal(res.Error, "could not update inventory")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("no %s stock record for TMC %d", material, tmcID)
	}

	var record models.Material
	if err := tx.Where("tmc_id = ? AND material_type = ?", tmcID, material).First(&record).Error; err != nil {
		return nil, apperrors.Internal(err, "could not reload inventory")
	}
	return &record, nil
}

func validateDelta(tmcID uint, material string, qty decimal.Decimal) error {
	if tmcID == 0 {
		return apperrors.Validation("tmcId is required")
	}
	if !models.ValidMaterial(material) {
		return apperrors.Validation("invalid material type %q", material)
	}
	if !qty.IsPositive() {
		return apperrors.Validation("quantityTons must be positive")
	}
	return nil
}
