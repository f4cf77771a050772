// Package controllers holds the gin handlers. Handlers bind and authorize the
// request, call a service on config.DB, publish the resulting event and render JSON.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"road_treatment/internal/apperrors"
	"road_treatment/internal/bridges"
	"road_treatment/internal/middleware"
	"road_treatment/internal/realtime"
	"road_treatment/internal/weather"
)

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

var (
	events        realtime.Publisher = noopPublisher{}
	eventHub      *realtime.Hub
	bridgeCatalog *bridges.Catalog
	weatherClient *weather.Client
)

// UseEventHub routes committed changes to hub and enables /ws.
func UseEventHub(h *realtime.Hub) {
	eventHub = h
	if h != nil {
		events = h
	}
}

// UsePublisher replaces the event sink without enabling /ws.
func UsePublisher(p realtime.Publisher) {
	events = p
}

func UseBridgeCatalog(c *bridges.Catalog) { bridgeCatalog = c }

func UseWeatherClient(c *weather.Client) { weatherClient = c }

// respondError renders err as {"error": message}. Untyped errors are logged
// and reported as 500.
func respondError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

func publicMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

func parseID(c *gin.Context, param string) (uint, error) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid %s %q", param, raw)
	}
	return uint(id), nil
}

func parseOptionalID(raw, name string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Validation("invalid %s %q", name, raw)
	}
	v := uint(id)
	return &v, nil
}

// tmcScope pins non-admin callers to their own TMC. Admins get whatever they asked for.
func tmcScope(actor *middleware.Claims, requested *uint) (*uint, error) {
	if actor.IsAdmin() {
		return requested, nil
	}
	if actor.TMCID == nil {
		return nil, apperrors.Forbidden("user is not assigned to a TMC")
	}
	if requested != nil && *requested != *actor.TMCID {
		return nil, apperrors.Forbidden("access to TMC %d denied", *requested)
	}
	return actor.TMCID, nil
}

// requireTMC resolves the TMC a write applies to, defaulting to the caller's own.
func requireTMC(actor *middleware.Claims, requested uint) (uint, error) {
	var req *uint
	if requested != 0 {
		req = &requested
	}
	scoped, err := tmcScope(actor, req)
	if err != nil {
		return 0, err
	}
	if scoped == nil {
		return 0, apperrors.Validation("tmcId is required")
	}
	return *scoped, nil
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
