package routes

import (
	"io"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"road_treatment/internal/controllers"
)

// SetupRouter builds the engine. accessLog receives one line per request.
func SetupRouter(accessLog io.Writer) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger(
		ginlogger.WithWriter(accessLog),
		ginlogger.WithUTC(true),
		ginlogger.WithSkipPath([]string{"/healthz"}),
		ginlogger.WithDefaultLevel(zerolog.InfoLevel),
	))

	r.GET("/healthz", controllers.Healthz)

	AuthRoutes(r)
	PublicRoutes(r)
	TicketRoutes(r)
	MaterialRoutes(r)
	TruckRoutes(r)
	AdminRoutes(r)
	DashboardRoutes(r)
	WebSocketRoutes(r)

	return r
}
