package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
)

// PublicRoutes serve the public map and need no token.
func PublicRoutes(r *gin.Engine) {
	r.GET("/api/public/bridges", controllers.PublicBridgeStatus)
	r.GET("/api/bridges", controllers.ListBridges)
}
