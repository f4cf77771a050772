package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
	"road_treatment/internal/middleware"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", controllers.LoginUser)
	}

	prefs := r.Group("/api/preferences", middleware.RequireAuth())
	{
		prefs.GET("/tmc", middleware.Authorize("preference", "read"), controllers.ListPreferences)
		prefs.PUT("/tmc/:tmcId", middleware.Authorize("preference", "update"), controllers.SetPreference)
	}
}
