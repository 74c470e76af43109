package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"

	"github.com/snapcharge/backend/controllers/user_controllers"
	"github.com/snapcharge/backend/middlewares"
	"github.com/snapcharge/backend/middlewares/auth"
)

// RegisterUserRoutes wires account registration, sessions and profiles.
func RegisterUserRoutes(router *gin.Engine, db *pgxpool.Pool, rdb *redislib.Client, limiter *middlewares.RateLimiter) {
	userController := user_controllers.NewUserController(db, rdb)

	router.POST("/api/auth/register", limiter.Limit("10-2m", "register"), userController.Register)
	router.POST("/api/auth/login", limiter.Limit("10-2m", "login"), userController.Login)

	protected := router.Group("/api/auth")
	protected.Use(auth.AuthMiddleware(db))
	{
		protected.POST("/logout", limiter.Limit("5-1m", "logout"), userController.Logout)
		protected.GET("/profile", limiter.Limit("15-30s", "profile"), userController.GetMyProfile)
		protected.PATCH("/profile", limiter.Limit("5-1m", "update-profile"), userController.UpdateProfile)
	}
}
