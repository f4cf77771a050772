package routes

import (
	"github.com/gin-gonic/gin"

	"road_treatment/internal/controllers"
	"road_treatment/internal/middleware"
)

func TicketRoutes(r *gin.Engine) {
	tickets := r.Group("/api/tickets", middleware.RequireAuth())
	{
		tickets.POST("", middleware.Authorize("ticket", "create"), controllers.CreateTicket)
		tickets.GET("", middleware.Authorize("ticket", "read"), controllers.ListTickets)
		tickets.PATCH("/:id", middleware.Authorize("ticket", "transition"), controllers.UpdateTicketStatus)
		tickets.PUT("/:id", middleware.Authorize("ticket", "edit"), controllers.EditTicket)
		tickets.DELETE("/:id", middleware.Authorize("ticket", "delete"), controllers.DeleteTicket)
	}
}
