package services

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

type bridgeStatusRow struct {
	models.BridgeStatus
	ID uint
}

type BridgeStatusService struct {
	db *gorm.DB
}

func NewBridgeStatusService(db *gorm.DB) *BridgeStatusService {
	return &BridgeStatusService{db: db}
}

// Latest returns one row per bridge: the most recent recorded treatment, or the
// newest scheduled one when the bridge has not been treated yet.
func (s *BridgeStatusService) Latest(ctx context.Context) ([]models.BridgeStatus, error) {
	var rows []bridgeStatusRow
	err := s.db.WithContext(ctx).Table("bridge_treatments AS bt").
		Select("bt.id, bt.bridge_id, bt.treated_at, bt.treatment_type, t.status AS ticket_status, t.scheduled_time").
		Joins("LEFT JOIN treatment_tickets t ON bt.ticket_id = t.id").
		Order("bt.bridge_id").Order("bt.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Internal(err, "could not load bridge status")
	}

	latest := map[string]models.BridgeStatus{}
	for _, r := range rows {
		cur, seen := latest[r.BridgeID]
		switch {
		case !seen:
			latest[r.BridgeID] = r.BridgeStatus
		case r.TreatedAt != nil && (cur.TreatedAt == nil || r.TreatedAt.After(*cur.TreatedAt)):
			latest[r.BridgeID] = r.BridgeStatus
		}
	}

	out := make([]models.BridgeStatus, 0, len(latest))
	for _, st := range latest {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BridgeID < out[j].BridgeID })
	return out, nil
}
