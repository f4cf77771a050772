package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"road_treatment/internal/config"
	"road_treatment/internal/middleware"
	"road_treatment/internal/realtime"
	"road_treatment/internal/services"
)

type createTruckInput struct {
	TruckNumber  string  `json:"truckNumber" binding:"required"`
	TMCID        uint    `json:"tmcId"`
	CapacityTons float64 `json:"capacityTons" binding:"gte=0"`
}

type updateTruckInput struct {
	Status       string  `json:"status" binding:"required,truck_status"`
	CapacityTons float64 `json:"capacityTons" binding:"gte=0"`
}

func ListTrucks(c *gin.Context) {
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

	trucks, err := services.NewFleetService(config.DB).List(c.Request.Context(), tmcID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trucks)
}

func CreateTruck(c *gin.Context) {
	var input createTruckInput
	if !bindJSON(c, &input) {
		return
	}
	tmcID, err := requireTMC(middleware.CurrentActor(c), input.TMCID)
	if err != nil {
		respondError(c, err)
		return
	}

	truck, err := services.NewFleetService(config.DB).Create(c.Request.Context(), services.CreateTruckInput{
		TruckNumber:  input.TruckNumber,
		TMCID:        tmcID,
		CapacityTons: input.CapacityTons,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TruckCreated, truck)
	c.JSON(http.StatusCreated, truck)
}

func UpdateTruck(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input updateTruckInput
	if !bindJSON(c, &input) {
		return
	}

	truck, err := services.NewFleetService(config.DB).SetStatus(c.Request.Context(), id, input.Status, input.CapacityTons)
	if err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TruckUpdated, truck)
	c.JSON(http.StatusOK, truck)
}

func DeleteTruck(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := services.NewFleetService(config.DB).Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	events.Publish(realtime.TruckDeleted, gin.H{"id": id})
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
