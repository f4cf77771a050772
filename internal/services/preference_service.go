package services

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

// PreferenceView is a monitoring preference joined with its TMC.
type PreferenceView struct {
	TMCID        uint   `gorm:"column:tmc_id" json:"tmc_id"`
	IsMonitoring bool   `json:"is_monitoring"`
	Name         string `json:"name"`
	Region       string `json:"region"`
}

type PreferenceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db, now: time.Now}
}

func (s *PreferenceService) List(ctx context.Context, userID uint) ([]PreferenceView, error) {
	prefs := []PreferenceView{}
	err := s.db.WithContext(ctx).Table("user_tmc_preferences AS p").
		Select("p.tmc_id, p.is_monitoring, t.name, t.region").
		Joins("JOIN tmc_centers t ON p.tmc_id = t.id").
		Where("p.user_id = ?", userID).
		Order("t.id").
		Scan(&prefs).Error
	if err != nil {
		return nil, apperrors.Internal(err, "could not list preferences")
	}
	return prefs, nil
}

// Set upserts the monitoring flag for one user and TMC.
func (s *PreferenceService) Set(ctx context.Context, userID, tmcID uint, monitoring bool) error {
	if tmcID == 0 {
		return apperrors.Validation("tmcId is required")
	}
	now := s.now()
	pref := models.TMCPreference{
		UserID:       userID,
		TMCID:        tmcID,
		IsMonitoring: monitoring,
		UpdatedAt:    now,
	}
	// Select("*") inserts a false flag instead of leaving it to the column.
	err := s.db.WithContext(ctx).Select("*").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "tmc_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_monitoring": monitoring,
			"updated_at":    now,
		}),
	}).Create(&pref).Error
	if err != nil {
		return apperrors.Internal(err, "could not save preference")
	}
	return nil
}
