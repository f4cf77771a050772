package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
	"road_treatment/internal/middleware"
)

func MaterialRoutes(r *gin.Engine) {
	materials := r.Group("/api/materials", middleware.RequireAuth())
	{
		materials.GET("/inventory", middleware.Authorize("material", "read"), controllers.GetInventory)
		materials.POST("/usage", middleware.Authorize("material", "usage"), controllers.RecordUsage)
		materials.POST("/restock", middleware.Authorize("material", "restock"), controllers.RecordRestock)
		materials.PUT("/:id", middleware.Authorize("material", "edit"), controllers.UpdateMaterial)
	}

	r.POST("/api/treatments", middleware.RequireAuth(), middleware.Authorize("treatment", "record"), controllers.RecordTreatment)
}
