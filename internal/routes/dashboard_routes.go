package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
	"road_treatment/internal/middleware"
)

func DashboardRoutes(r *gin.Engine) {
	dash := r.Group("/api/dashboard", middleware.RequireAuth())
	{
		dash.GET("/statewide", middleware.Authorize("dashboard", "statewide"), controllers.StatewideDashboard)
		dash.GET("/tmc/:id", middleware.Authorize("dashboard", "tmc"), controllers.TMCDashboard)
	}

	r.GET("/api/weather/alerts", middleware.RequireAuth(), middleware.Authorize("weather", "read"), controllers.WeatherAlerts)
}
