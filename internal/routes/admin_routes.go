package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
	"road_treatment/internal/middleware"
)

func AdminRoutes(r *gin.Engine) {
	users := r.Group("/api/users", middleware.RequireAuth())
	{
		users.GET("", middleware.Authorize("user", "read"), controllers.ListUsers)
		users.POST("", middleware.Authorize("user", "create"), controllers.CreateUser)
		users.PUT("/:id", middleware.Authorize("user", "update"), controllers.UpdateUser)
		users.DELETE("/:id", middleware.Authorize("user", "delete"), controllers.DeleteUser)
	}
}
