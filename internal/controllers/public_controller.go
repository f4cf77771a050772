package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"road_treatment/internal/bridges"
	"road_treatment/internal/config"
	"road_treatment/internal/services"
)

// PublicBridgeStatus lists the latest treatment per bridge for the public map.
func PublicBridgeStatus(c *gin.Context) {
	status, err := services.NewBridgeStatusService(config.DB).Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListBridges serves the bridge inventory, as GeoJSON when format=geojson.
func ListBridges(c *gin.Context) {
	if bridgeCatalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bridge inventory not configured"})
		return
	}
	all, err := bridgeCatalog.All()
	if err != nil {
		logrus.WithError(err).Error("Failed to load bridges")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bridges"})
		return
	}

	if c.Query("format") != "geojson" {
		c.JSON(http.StatusOK, all)
		return
	}
	fc, err := bridges.FeatureCollection(all)
	if err != nil {
		logrus.WithError(err).Error("Failed to render bridges as GeoJSON")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bridges"})
		return
	}
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func WeatherAlerts(c *gin.Context) {
	if weatherClient == nil {
		c.JSON(http.StatusOK, []interface{}{})
		return
	}
	c.JSON(http.StatusOK, weatherClient.Alerts(c.Request.Context()))
}

func Healthz(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if sqlDB, err := config.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	if eventHub != nil {
		status["realtime_clients"] = eventHub.ClientCount()
	}
	c.JSON(http.StatusOK, status)
}
