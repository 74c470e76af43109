package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/controllers/driver_controllers"
	"github.com/snapcharge/backend/middlewares"
	"github.com/snapcharge/backend/middlewares/auth"
	"github.com/snapcharge/backend/models/shared_models"
	"github.com/snapcharge/backend/utils/mail"
	"github.com/snapcharge/backend/utils/timeslots"
)

// RegisterDriverRoutes wires the driver-facing surface: config, search,
// the booking lifecycle and station reviews.
func RegisterDriverRoutes(router *gin.Engine, db *pgxpool.Pool, schedule timeslots.Schedule, mailer *mail.Mailer, limiter *middlewares.RateLimiter) {
	driverController := driver_controllers.NewDriverController(db, schedule, mailer)

	// Public: reviews are readable without an account.
	router.GET("/api/driver/stations/:station_id/reviews",
		limiter.Limit("30-1m", "station-reviews"), driverController.StationReviews)

	protected := router.Group("/api/driver")
	protected.Use(auth.AuthMiddleware(db), auth.RequireRole(shared_models.RoleDriver))
	{
		protected.GET("/config", driverController.Config)
		protected.GET("/search", limiter.Limit("30-1m", "driver-search"), driverController.Search)
		protected.GET("/bookings", limiter.Limit("30-1m", "driver-bookings"), driverController.ListBookings)
		protected.POST("/bookings", limiter.Limit("10-1m", "create-booking"), driverController.CreateBooking)
		protected.POST("/bookings/complete", limiter.Limit("10-1m", "complete-booking"), driverController.CompleteBooking)
	}
}
