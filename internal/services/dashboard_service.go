package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

const recentActivityLimit = 10

// TMCStats summarises one TMC for the dashboards.
type TMCStats struct {
	models.TMC
	Trucks         map[string]int64           `json:"trucks"`
	Tickets        map[string]int64           `json:"tickets"`
	Materials      map[string]decimal.Decimal `json:"materials"`
	RecentActivity []RecentTicket             `json:"recentActivity,omitempty"`
}

type RecentTicket struct {
	ID           uint      `json:"id"`
	TicketNumber string    `json:"ticket_number"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
	DriverName   *string   `json:"driver_name"`
	TruckNumber  *string   `json:"truck_number"`
}

type StatewideTotals struct {
	Trucks  int64 `json:"trucks"`
	Tickets int64 `json:"tickets"`
}

type Statewide struct {
	Totals   StatewideTotals `json:"totals"`
	TMCStats []TMCStats      `json:"tmcStats"`
}

type statusCount struct {
	Status string
	Count  int64
}

// DashboardService aggregates per-region counts. Region queries run in parallel.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// TMC returns the stats of one TMC including its ten most recent tickets.
func (s *DashboardService) TMC(ctx context.Context, tmcID uint) (*TMCStats, error) {
	return s.collect(ctx, tmcID, true)
}

// Statewide aggregates every TMC the user monitors. Open tickets count toward
// the totals; completed ones do not.
func (s *DashboardService) Statewide(ctx context.Context, userID uint) (*Statewide, error) {
	var tmcIDs []uint
	err := s.db.WithContext(ctx).Model(&models.TMCPreference{}).
		Where("user_id = ? AND is_monitoring = ?", userID, true).
		Order("tmc_id").
		Pluck("tmc_id", &tmcIDs).Error
	if err != nil {
		return nil, apperrors.Internal(err, "could not load monitoring preferences")
	}

	stats := make([]TMCStats, len(tmcIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range tmcIDs {
		g.Go(func() error {
			st, err := s.collect(gctx, id, false)
			if err != nil {
				return err
			}
			stats[i] = *st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Statewide{TMCStats: stats}
	for _, st := range stats {
		for _, n := range st.Trucks {
			out.Totals.Trucks += n
		}
		out.Totals.Tickets += st.Tickets[models.TicketAssigned] + st.Tickets[models.TicketInProgress]
	}
	return out, nil
}

func (s *DashboardService) collect(ctx context.Context, tmcID uint, withRecent bool) (*TMCStats, error) {
	db := s.db.WithContext(ctx)
	st := &TMCStats{
		Trucks: map[string]int64{
			models.TruckAvailable:   0,
			models.TruckAssigned:    0,
			models.TruckMaintenance: 0,
		},
		Tickets: map[string]int64{
			models.TicketAssigned:   0,
			models.TicketInProgress: 0,
			models.TicketCompleted:  0,
		},
		Materials: map[string]decimal.Decimal{},
	}

	if err := db.First(&st.TMC, tmcID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("TMC %d not found", tmcID)
		}
		return nil, apperrors.Internal(err, "could not load TMC")
	}

	var (
		trucks    []statusCount
		tickets   []statusCount
		materials []models.Material
		recent    []RecentTicket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Truck{}).
			Select("status, COUNT(*) AS count").
			Where("tmc_id = ?", tmcID).Group("status").Scan(&trucks).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Ticket{}).
			Select("status, COUNT(*) AS count").
			Where("tmc_id = ?", tmcID).Group("status").Scan(&tickets).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Where("tmc_id = ?", tmcID).Find(&materials).Error
	})
	if withRecent {
		g.Go(func() error {
			return s.db.WithContext(gctx).Table("treatment_tickets AS t").
				Select("t.id, t.ticket_number, t.status, t.priority, t.created_at, u.name AS driver_name, tr.truck_number").
				Joins("LEFT JOIN users u ON t.assigned_driver_id = u.id").
				Joins("LEFT JOIN trucks tr ON t.truck_id = tr.id").
				Where("t.tmc_id = ?", tmcID).
				Order("t.created_at DESC").Order("t.id DESC").
				Limit(recentActivityLimit).
				Scan(&recent).Error
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Internal(err, "could not aggregate TMC stats")
	}

	for _, c := range trucks {
		st.Trucks[c.Status] = c.Count
	}
	for _, c := range tickets {
		st.Tickets[c.Status] = c.Count
	}
	for _, m := range materials {
		st.Materials[m.MaterialType] = m.QuantityTons
	}
	if withRecent {
		st.RecentActivity = recent
		if st.RecentActivity == nil {
			st.RecentActivity = []RecentTicket{}
		}
	}
	return st, nil
}
