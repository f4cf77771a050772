package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"road_treatment/internal/middleware"
	"road_treatment/internal/realtime"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the token, not the origin, gates access
	},
}

// HandleEventsWebSocket streams every committed change to an authenticated
// dashboard. Browsers cannot set headers on the upgrade, so the JWT travels
// in the token query parameter.
func HandleEventsWebSocket(c *gin.Context) {
	if eventHub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "realtime channel disabled"})
		return
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
		return
	}
	claims, err := middleware.ValidateToken(token)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket connection attempt with invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}

	client, err := eventHub.Register(conn, claims.ID, claims.Role)
	if err != nil {
		reason := "server error"
		if errors.Is(err, realtime.ErrTooManyClients) {
			reason = "too many connections"
		}
		logrus.WithError(err).WithField("user_id", claims.ID).Warn("WebSocket client rejected")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, reason))
		_ = conn.Close()
		return
	}

	client.ReadLoop()
}
