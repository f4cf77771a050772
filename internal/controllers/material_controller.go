package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/config"
	"road_treatment/internal/middleware"
	"road_treatment/internal/realtime"
	"road_treatment/internal/services"
)

type stockChangeInput struct {
	TMCID        uint            `json:"tmcId"`
	MaterialType string          `json:"materialType" binding:"required,material"`
	QuantityTons decimal.Decimal `json:"quantityTons"`
}

type setQuantityInput struct {
	QuantityTons decimal.Decimal `json:"quantityTons"`
}

type treatmentInput struct {
	TicketID     uint            `json:"ticketId" binding:"required"`
	BridgeID     string          `json:"bridgeId" binding:"required"`
	MaterialType string          `json:"materialType" binding:"required,material"`
	QuantityTons decimal.Decimal `json:"quantityTons"`
}

func GetInventory(c *gin.Context) {
	requested, err := parseOptionalID(c.Query("tmcId"), "tmcId")
	if err != nil {
		respondError(c, err)
		return
	}
	if requested == nil {
		respondError(c, apperrors.Validation("tmcId is required"))
		return
	}
	if _, err := tmcScope(middleware.CurrentActor(c), requested); err != nil {
		respondError(c, err)
		return
	}

	rows, err := services.NewInventoryService(config.DB).GetInventory(c.Request.Context(), *requested)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func RecordUsage(c *gin.Context) {
	changeStock(c, false)
}

func RecordRestock(c *gin.Context) {
	changeStock(c, true)
}

func changeStock(c *gin.Context, restock bool) {
	var input stockChangeInput
	if !bindJSON(c, &input) {
		return
	}
	tmcID, err := requireTMC(middleware.CurrentActor(c), input.TMCID)
	if err != nil {
		respondError(c, err)
		return
	}

	svc := services.NewInventoryService(config.DB)
	apply := svc.ApplyUsage
	if restock {
		apply = svc.ApplyRestock
	}
	record, err := apply(c.Request.Context(), tmcID, input.MaterialType, input.QuantityTons)
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.MaterialUpdated, record)
	c.JSON(http.StatusOK, record)
}

func UpdateMaterial(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input setQuantityInput
	if !bindJSON(c, &input) {
		return
	}

	record, err := services.NewInventoryService(config.DB).SetQuantity(c.Request.Context(), id, input.QuantityTons)
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.MaterialUpdated, record)
	c.JSON(http.StatusOK, record)
}

func RecordTreatment(c *gin.Context) {
	var input treatmentInput
	if !bindJSON(c, &input) {
		return
	}

	if err := checkTicketAccess(c, services.NewTicketService(config.DB), middleware.CurrentActor(c), input.TicketID); err != nil {
		respondError(c, err)
		return
	}

	record, err := services.NewInventoryService(config.DB).RecordTreatmentUsage(c.Request.Context(), services.TreatmentUsageInput{
		TicketID:     input.TicketID,
		BridgeID:     input.BridgeID,
		MaterialType: input.MaterialType,
		QuantityTons: input.QuantityTons,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.MaterialUpdated, record)
	c.JSON(http.StatusOK, gin.H{"success": true, "material": record})
}
