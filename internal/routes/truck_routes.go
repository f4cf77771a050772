package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
	"road_treatment/internal/middleware"
)

func TruckRoutes(r *gin.Engine) {
	trucks := r.Group("/api/trucks", middleware.RequireAuth())
	{
		trucks.GET("", middleware.Authorize("truck", "read"), controllers.ListTrucks)
		trucks.POST("", middleware.Authorize("truck", "create"), controllers.CreateTruck)
		trucks.PUT("/:id", middleware.Authorize("truck", "update"), controllers.UpdateTruck)
		trucks.DELETE("/:id", middleware.Authorize("truck", "delete"), controllers.DeleteTruck)
	}
}
