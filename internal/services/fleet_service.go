package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

type CreateTruckInput struct {
	TruckNumber  string
	TMCID        uint
	CapacityTons float64
}

// FleetService keeps truck records and lets operators override their status.
type FleetService struct {
	db *gorm.DB
}

func NewFleetService(db *gorm.DB) *FleetService {
	return &FleetService{db: db}
}

// List returns trucks ordered by number, optionally for one TMC.
func (s *FleetService) List(ctx context.Context, tmcID *uint) ([]models.Truck, error) {
	q := s.db.WithContext(ctx).Order("truck_number")
	if tmcID != nil {
		q = q.Where("tmc_id = ?", *tmcID)
	}
	trucks := []models.Truck{}
	if err := q.Find(&trucks).Error; err != nil {
		return nil, apperrors.Internal(err, "could not list trucks")
	}
	return trucks, nil
}

// Create registers a truck. New trucks are always available.
func (s *FleetService) Create(ctx context.Context, in CreateTruckInput) (*models.Truck, error) {
	in.TruckNumber = strings.TrimSpace(in.TruckNumber)
	if in.TruckNumber == "" || in.TMCID == 0 {
		return nil, apperrors.Validation("truckNumber and tmcId are required")
	}

	truck := models.Truck{
		TruckNumber:  in.TruckNumber,
		TMCID:        in.TMCID,
		Status:       models.TruckAvailable,
		CapacityTons: in.CapacityTons,
	}
	if err := s.db.WithContext(ctx).Create(&truck).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("truck %s already exists in TMC %d", in.TruckNumber, in.TMCID)
		}
		return nil, apperrors.Internal(err, "could not create truck")
	}

	logrus.WithFields(logrus.Fields{
		"truck_id":     truck.ID,
		"truck_number": truck.TruckNumber,
		"tmc_id":       truck.TMCID,
	}).Info("Truck created")
	return &truck, nil
}

// SetStatus overwrites status and capacity outside the ticket workflow.
func (s *FleetService) SetStatus(ctx context.Context, truckID uint, status string, capacityTons float64) (*models.Truck, error) {
	if !models.ValidTruckStatus(status) {
		return nil, apperrors.Validation("invalid truck status %q", status)
	}

	var truck models.Truck
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&truck, truckID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("truck %d not found", truckID)
			}
			return apperrors.Internal(err, "could not load truck")
		}
		err := tx.Model(&truck).Updates(map[string]interface{}{
			"status":        status,
			"capacity_tons": capacityTons,
		}).Error
		if err != nil {
			return apperrors.Internal(err, "could not update truck")
		}
		return tx.First(&truck, truckID).Error
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"truck_id": truckID,
		"status":   status,
	}).Info("Truck status overwritten")
	return &truck, nil
}

// Delete removes a truck without checking ticket references. Open tickets
// pointing at it are left as they are and reported in the log.
func (s *FleetService) Delete(ctx context.Context, truckID uint) error {
	db := s.db.WithContext(ctx)

	var active int64
	if err := db.Model(&models.Ticket{}).
		Where("truck_id = ? AND status <> ?", truckID, models.TicketCompleted).
		Count(&active).Error; err != nil {
		return apperrors.Internal(err, "could not count truck tickets")
	}
	if active > 0 {
		logrus.WithFields(logrus.Fields{
			"truck_id":       truckID,
			"active_tickets": active,
		}).Warn("Deleting truck still referenced by open tickets")
	}

	res := db.Delete(&models.Truck{}, truckID)
	if res.Error != nil {
		return apperrors.Internal(res.Error, "could not delete truck")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("truck %d not found", truckID)
	}
	return nil
}
