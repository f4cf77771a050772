package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine) {
	r.GET("/ws", controllers.HandleEventsWebSocket)
}
