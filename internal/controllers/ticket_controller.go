package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/config"
	"road_treatment/internal/middleware"
	"road_treatment/internal/models"
	"road_treatment/internal/realtime"
	"road_treatment/internal/services"
)

type createTicketInput struct {
	TMCID         uint       `json:"tmcId"`
	TruckID       uint       `json:"truckId" binding:"required"`
	DriverID      uint       `json:"driverId" binding:"required"`
	Priority      string     `json:"priority" binding:"omitempty,priority"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	Notes         string     `json:"notes"`
	BridgeIDs     []string   `json:"bridgeIds" binding:"dive,required"`
}

type editTicketInput struct {
	TruckID       uint       `json:"truckId" binding:"required"`
	DriverID      uint       `json:"driverId" binding:"required"`
	Priority      string     `json:"priority" binding:"omitempty,priority"`
	ScheduledTime *time.Time `json:"scheduledTime"`
	Notes         string     `json:"notes"`
}

type transitionInput struct {
	Status string `json:"status" binding:"required,oneof=in_progress completed"`
}

func CreateTicket(c *gin.Context) {
	var input createTicketInput
	if !bindJSON(c, &input) {
		return
	}
	actor := middleware.CurrentActor(c)
	tmcID, err := requireTMC(actor, input.TMCID)
	if err != nil {
		respondError(c, err)
		return
	}

	ticket, err := services.NewTicketService(config.DB).Create(c.Request.Context(), services.CreateTicketInput{
		TMCID:         tmcID,
		CreatedBy:     actor.ID,
		TruckID:       input.TruckID,
		DriverID:      input.DriverID,
		Priority:      input.Priority,
		ScheduledTime: input.ScheduledTime,
		Notes:         input.Notes,
		BridgeIDs:     input.BridgeIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TicketCreated, ticket)
	c.JSON(http.StatusCreated, ticket)
}

func ListTickets(c *gin.Context) {
	requested, err := parseOptionalID(c.Query("tmcId"), "tmcId")
	if err != nil {
		respondError(c, err)
		return
	}
	tmcID, err := tmcScope(middleware.CurrentActor(c), requested)
	if err != nil {
		respondError(c, err)
		return
	}

	tickets, err := services.NewTicketService(config.DB).Query(c.Request.Context(), services.TicketFilter{
		TMCID:  tmcID,
		Status: c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// UpdateTicketStatus handles PATCH. Drivers may only move tickets assigned to them.
func UpdateTicketStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input transitionInput
	if !bindJSON(c, &input) {
		return
	}

	actor := middleware.CurrentActor(c)
	svc := services.NewTicketService(config.DB)
	if err := checkTicketAccess(c, svc, actor, id); err != nil {
		respondError(c, err)
		return
	}

	ticket, err := svc.Transition(c.Request.Context(), id, input.Status, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TicketUpdated, ticket)
	c.JSON(http.StatusOK, ticket)
}

func EditTicket(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input editTicketInput
	if !bindJSON(c, &input) {
		return
	}

	svc := services.NewTicketService(config.DB)
	if err := checkTicketAccess(c, svc, middleware.CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}

	ticket, err := svc.Edit(c.Request.Context(), id, services.EditTicketInput{
		TruckID:       input.TruckID,
		DriverID:      input.DriverID,
		Priority:      input.Priority,
		ScheduledTime: input.ScheduledTime,
		Notes:         input.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TicketUpdated, ticket)
	c.JSON(http.StatusOK, ticket)
}

func DeleteTicket(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	svc := services.NewTicketService(config.DB)
	if err := checkTicketAccess(c, svc, middleware.CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}

	res, err := svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TicketDeleted, gin.H{"id": id})
	c.JSON(http.StatusOK, res)
}

// checkTicketAccess keeps non-admins inside their TMC and drivers on their own tickets.
func checkTicketAccess(c *gin.Context, svc *services.TicketService, actor *middleware.Claims, ticketID uint) error {
	if actor.IsAdmin() {
		return nil
	}
	ticket, err := svc.Get(c.Request.Context(), ticketID)
	if err != nil {
		return err
	}
	if _, err := tmcScope(actor, &ticket.TMCID); err != nil {
		return err
	}
	if actor.Role == models.RoleDriver && ticket.AssignedDriverID != actor.ID {
		return apperrors.Forbidden("ticket %d is not assigned to you", ticketID)
	}
	return nil
}
