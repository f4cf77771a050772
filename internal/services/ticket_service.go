package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/models"
)

const maxTicketNumberAttempts = 5

// CreateTicketInput carries everything needed to open a treatment ticket.
type CreateTicketInput struct {
	TMCID         uint
	CreatedBy     uint
	TruckID       uint
	DriverID      uint
	Priority      string
	ScheduledTime *time.Time
	Notes         string
	BridgeIDs     []string
}

// EditTicketInput overwrites the editable fields of an open ticket.
type EditTicketInput struct {
	TruckID       uint
	DriverID      uint
	Priority      string
	ScheduledTime *time.Time
	Notes         string
}

// TicketFilter narrows Query. Nil/empty fields do not filter.
type TicketFilter struct {
	TMCID  *uint
	Status string
}

type DeleteResult struct {
	Success bool `json:"success"`
	ID      uint `json:"id"`
}

// TicketService runs the ticket state machine. Every command is one transaction
// spanning the ticket, its bridge rows and the truck it reserves.
type TicketService struct {
	db      *gorm.DB
	now     func() time.Time
	numbers func(time.Time) string
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db, now: time.Now, numbers: NewTicketNumber}
}

// NewTicketNumber returns TICKET-YYYYMMDD-NNNN. Collisions are possible and
// handled by the caller.
func NewTicketNumber(t time.Time) string {
	return fmt.Sprintf("TICKET-%s-%04d", t.Format("20060102"), rand.IntN(10000))
}

// Create reserves the truck, inserts the ticket and links the bridges.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*models.TicketView, error) {
	if in.TMCID == 0 {
		return nil, apperrors.Validation("tmcId is required")
	}
	if in.TruckID == 0 || in.DriverID == 0 {
		return nil, apperrors.Validation("truckId and driverId are required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(in.Priority) {
		return nil, apperrors.Validation("invalid priority %q", in.Priority)
	}
	in.BridgeIDs = uniqueBridgeIDs(in.BridgeIDs)

	var ticketID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDriver(tx, in.DriverID); err != nil {
			return err
		}
		if err := reserveTruck(tx, in.TruckID, in.TMCID); err != nil {
			return err
		}

		ticket := models.Ticket{
			TMCID:            in.TMCID,
			CreatedBy:        in.CreatedBy,
			AssignedDriverID: in.DriverID,
			TruckID:          in.TruckID,
			Priority:         in.Priority,
			Status:           models.TicketAssigned,
			ScheduledTime:    in.ScheduledTime,
			Notes:            in.Notes,
		}
		if err := s.insertWithNumber(tx, &ticket); err != nil {
			return err
		}

		if len(in.BridgeIDs) > 0 {
			rows := make([]models.BridgeTreatment, 0, len(in.BridgeIDs))
			for _, bridgeID := range in.BridgeIDs {
				rows = append(rows, models.BridgeTreatment{TicketID: ticket.ID, BridgeID: bridgeID})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return apperrors.Internal(err, "could not link bridges to ticket")
			}
		}

		ticketID = ticket.ID
		logrus.WithFields(logrus.Fields{
			"ticket_id":     ticket.ID,
			"ticket_number": ticket.TicketNumber,
			"tmc_id":        in.TMCID,
			"truck_id":      in.TruckID,
			"driver_id":     in.DriverID,
			"bridges":       len(in.BridgeIDs),
		}).Info("Ticket created")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ticketID)
}

// insertWithNumber inserts the ticket inside a savepoint so a number collision
// can be retried without aborting the enclosing transaction.
func (s *TicketService) insertWithNumber(tx *gorm.DB, ticket *models.Ticket) error {
	for attempt := 1; attempt <= maxTicketNumberAttempts; attempt++ {
		ticket.ID = 0
		ticket.TicketNumber = s.numbers(s.now())

		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(ticket).Error
		})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return apperrors.Internal(err, "could not create ticket")
		}
		logrus.WithFields(logrus.Fields{
			"ticket_number": ticket.TicketNumber,
			"attempt":       attempt,
		}).Warn("Ticket number collision, retrying")
	}
	return apperrors.Conflict("could not allocate a unique ticket number after %d attempts", maxTicketNumberAttempts)
}

// uniqueBridgeIDs drops blanks and repeats, keeping first-seen order.
func uniqueBridgeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Transition moves a ticket forward. in_progress re-stamps started_at each time;
// completed stamps completed_at and releases the truck.
func (s *TicketService) Transition(ctx context.Context, ticketID uint, status string, actorID uint) (*models.TicketView, error) {
	if status != models.TicketInProgress && status != models.TicketCompleted {
		return nil, apperrors.Validation("invalid status %q: must be %s or %s", status, models.TicketInProgress, models.TicketCompleted)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := loadTicket(tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == models.TicketCompleted {
			return apperrors.Conflict("ticket %s is already completed", ticket.TicketNumber)
		}

		from := ticket.Status
		now := s.now()
		updates := map[string]interface{}{"status": status}
		if status == models.TicketInProgress {
			updates["started_at"] = now
		} else {
			updates["completed_at"] = now
		}
		if err := tx.Model(ticket).Updates(updates).Error; err != nil {
			return apperrors.Internal(err, "could not update ticket status")
		}

		if status == models.TicketCompleted {
			if err := releaseTruck(tx, ticket.TruckID); err != nil {
				return err
			}
		}

		logrus.WithFields(logrus.Fields{
			"ticket_id": ticketID,
			"from":      from,
			"to":        status,
			"actor_id":  actorID,
		}).Info("Ticket status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ticketID)
}

// Edit overwrites the editable fields. A truck change releases the old truck and
// reserves the new one in the same transaction.
func (s *TicketService) Edit(ctx context.Context, ticketID uint, in EditTicketInput) (*models.TicketView, error) {
	if in.TruckID == 0 || in.DriverID == 0 {
		return nil, apperrors.Validation("truckId and driverId are required")
	}
	if in.Priority != "" && !models.ValidPriority(in.Priority) {
		return nil, apperrors.Validation("invalid priority %q", in.Priority)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := loadTicket(tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == models.TicketCompleted {
			return apperrors.Conflict("ticket %s is completed and can no longer be edited", ticket.TicketNumber)
		}

		if in.DriverID != ticket.AssignedDriverID {
			if err := ensureDriver(tx, in.DriverID); err != nil {
				return err
			}
		}

		if in.TruckID != ticket.TruckID {
			if err := releaseTruck(tx, ticket.TruckID); err != nil {
				return err
			}
			if err := reserveTruck(tx, in.TruckID, ticket.TMCID); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"ticket_id": ticketID,
				"old_truck": ticket.TruckID,
				"new_truck": in.TruckID,
			}).Info("Ticket truck reassigned")
		}

		priority := in.Priority
		if priority == "" {
			priority = ticket.Priority
		}
		updates := map[string]interface{}{
			"truck_id":           in.TruckID,
			"assigned_driver_id": in.DriverID,
			"priority":           priority,
			"scheduled_time":     in.ScheduledTime,
			"notes":              in.Notes,
		}
		if err := tx.Model(ticket).Updates(updates).Error; err != nil {
			return apperrors.Internal(err, "could not update ticket")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, ticketID)
}

// Delete removes the ticket and its bridge rows, then frees its truck.
func (s *TicketService) Delete(ctx context.Context, ticketID uint) (*DeleteResult, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := loadTicket(tx, ticketID)
		if err != nil {
			return err
		}

		if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.BridgeTreatment{}).Error; err != nil {
			return apperrors.Internal(err, "could not delete bridge treatments")
		}
		if err := tx.Delete(&models.Ticket{}, ticketID).Error; err != nil {
			return apperrors.Internal(err, "could not delete ticket")
		}

		// A completed ticket already gave its truck back, which may since be reserved again.
		if ticket.Status != models.TicketCompleted {
			if err := releaseTruck(tx, ticket.TruckID); err != nil {
				return err
			}
		}

		logrus.WithFields(logrus.Fields{
			"ticket_id": ticketID,
			"truck_id":  ticket.TruckID,
		}).Info("Ticket deleted")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &DeleteResult{Success: true, ID: ticketID}, nil
}

// Get returns the joined view of one ticket.
func (s *TicketService) Get(ctx context.Context, ticketID uint) (*models.TicketView, error) {
	var views []models.TicketView
	if err := ticketViews(s.db.WithContext(ctx)).Where("t.id = ?", ticketID).Scan(&views).Error; err != nil {
		return nil, apperrors.Internal(err, "could not load ticket")
	}
	if len(views) == 0 {
		return nil, apperrors.NotFound("ticket %d not found", ticketID)
	}
	return &views[0], nil
}

// Query lists tickets newest first.
func (s *TicketService) Query(ctx context.Context, f TicketFilter) ([]models.TicketView, error) {
	q := ticketViews(s.db.WithContext(ctx))
	if f.TMCID != nil {
		q = q.Where("t.tmc_id = ?", *f.TMCID)
	}
	if f.Status != "" {
		q = q.Where("t.status = ?", f.Status)
	}

	views := []models.TicketView{}
	if err := q.Order("t.created_at DESC").Order("t.id DESC").Scan(&views).Error; err != nil {
		return nil, apperrors.Internal(err, "could not list tickets")
	}
	return views, nil
}

func ticketViews(db *gorm.DB) *gorm.DB {
	return db.Table("treatment_tickets AS t").
		Select(`t.*, u.name AS driver_name, tr.truck_number AS truck_number,
			(SELECT COUNT(*) FROM bridge_treatments bt WHERE bt.ticket_id = t.id) AS bridge_count`).
		Joins("LEFT JOIN users u ON t.assigned_driver_id = u.id").
		Joins("LEFT JOIN trucks tr ON t.truck_id = tr.id")
}

func loadTicket(tx *gorm.DB, ticketID uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := tx.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("ticket %d not found", ticketID)
		}
		return nil, apperrors.Internal(err, "could not load ticket")
	}
	return &ticket, nil
}
