package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"road_treatment/internal/config"
	"road_treatment/internal/middleware"
	"road_treatment/internal/services"
)

type preferenceInput struct {
	IsMonitoring *bool `json:"isMonitoring" binding:"required"`
}

func StatewideDashboard(c *gin.Context) {
	stats, err := services.NewDashboardService(config.DB).Statewide(c.Request.Context(), middleware.CurrentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func TMCDashboard(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := tmcScope(middleware.CurrentActor(c), &id); err != nil {
		respondError(c, err)
		return
	}

	stats, err := services.NewDashboardService(config.DB).TMC(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func ListPreferences(c *gin.Context) {
	prefs, err := services.NewPreferenceService(config.DB).List(c.Request.Context(), middleware.CurrentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func SetPreference(c *gin.Context) {
	tmcID, err := parseID(c, "tmcId")
	if err != nil {
		respondError(c, err)
		return
	}
	var input preferenceInput
	if !bindJSON(c, &input) {
		return
	}

	err = services.NewPreferenceService(config.DB).Set(c.Request.Context(), middleware.CurrentActor(c).ID, tmcID, *input.IsMonitoring)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
