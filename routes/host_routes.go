package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/controllers/host_controllers"
	"github.com/snapcharge/backend/middlewares"
	"github.com/snapcharge/backend/middlewares/auth"
	"github.com/snapcharge/backend/models/shared_models"
	"github.com/snapcharge/backend/utils/mail"
)

// RegisterHostRoutes wires the host-facing surface: dashboard stats and
// station/booking management.
func RegisterHostRoutes(router *gin.Engine, db *pgxpool.Pool, mailer *mail.Mailer, limiter *middlewares.RateLimiter) {
	hostController := host_controllers.NewHostController(db, mailer)

	protected := router.Group("/api/host")
	protected.Use(auth.AuthMiddleware(db), auth.RequireRole(shared_models.RoleHost))
	{
		protected.GET("/stats", limiter.Limit("30-1m", "host-stats"), hostController.Stats)
		protected.GET("/stations", limiter.Limit("30-1m", "host-stations"), hostController.ListStations)
		protected.POST("/stations", limiter.Limit("10-1m", "create-station"), hostController.CreateStation)
		protected.PATCH("/stations/:station_id", limiter.Limit("20-1m", "update-station"), hostController.UpdateStation)
		protected.GET("/bookings", limiter.Limit("30-1m", "host-bookings"), hostController.ListBookings)
	}
}
