package routes

import (
	"time"

	"casamar/handlers"
	"casamar/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, tools *handlers.ToolHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	api := r.Group("/api/tools")
	{
		api.Use(middleware.ToolAuthMiddleware())
		api.POST("/reserve-rooms", tools.ReserveRooms)
		api.GET("/bookings/:guestId", tools.GetBookings)
	}

	r.GET("/health", handlers.HealthHandler)
}
