// Package services holds the transactional commands behind the dispatch API:
// the ticket state machine, the inventory ledger and the fleet registry.
package services

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

// isUniqueViolation recognises duplicate-key failures from lib/pq and from
// dialectors that translate errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// reserveTruck flips a truck of the given TMC from available to assigned. The
// conditional update is the reservation: zero rows affected means someone else
// holds it, or the truck belongs to another TMC.
func reserveTruck(tx *gorm.DB, truckID, tmcID uint) error {
	res := tx.Model(&models.Truck{}).
		Where("id = ? AND tmc_id = ? AND status = ?", truckID, tmcID, models.TruckAvailable).
		Update("status", models.TruckAssigned)
	if res.Error != nil {
		return apperrors.Internal(res.Error, "could not reserve truck")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var truck models.Truck
	if err := tx.Select("id", "tmc_id", "status").First(&truck, truckID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("truck %d not found", truckID)
		}
		return apperrors.Internal(err, "could not load truck")
	}
	if truck.TMCID != tmcID {
		return apperrors.Validation("truck %d does not belong to TMC %d", truckID, tmcID)
	}
	return apperrors.Conflict("truck %d is not available (status %s)", truckID, truck.Status)
}

// releaseTruck returns an assigned truck to the pool. Trucks an operator moved
// to maintenance stay there.
func releaseTruck(tx *gorm.DB, truckID uint) error {
	if truckID == 0 {
		return nil
	}
	err := tx.Model(&models.Truck{}).
		Where("id = ? AND status = ?", truckID, models.TruckAssigned).
		Update("status", models.TruckAvailable).Error
	if err != nil {
		return apperrors.Internal(err, "could not release truck")
	}
	return nil
}

func ensureDriver(tx *gorm.DB, driverID uint) error {
	var user models.User
	if err := tx.Select("id", "role").First(&user, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("driver %d not found", driverID)
		}
		return apperrors.Internal(err, "could not load driver")
	}
	if user.Role != models.RoleDriver {
		return apperrors.Validation("user %d is not a driver", driverID)
	}
	return nil
}
