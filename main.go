package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snapcharge/backend/badwords"
	"github.com/snapcharge/backend/config"
	"github.com/snapcharge/backend/config/db"
	redisconfig "github.com/snapcharge/backend/config/redis"
	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/middlewares"
	"github.com/snapcharge/backend/middlewares/cors"
	"github.com/snapcharge/backend/routes"
	"github.com/snapcharge/backend/utils/mail"
	"github.com/snapcharge/backend/utils/timeslots"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	ctx := context.Background()

	pool, err := db.Connect(ctx)
	if err != nil {
		logger.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(pool)

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.ErrorLogger.Fatalf("Failed to ensure schema: %v", err)
	}

	rdb, err := redisconfig.Connect(ctx)
	if err != nil {
		logger.WarnLogger.Warnf("Redis unavailable, continuing without it: %v", err)
		rdb = nil
	} else {
		defer redisconfig.Close(rdb)
	}

	if err := badwords.LoadBadWords("badwords/en.txt"); err != nil {
		logger.WarnLogger.Warnf("Review moderation list not loaded: %v", err)
	}

	mailer := mail.NewMailer()
	limiter := middlewares.NewRateLimiter(rdb)
	schedule := timeslots.Default()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterUserRoutes(r, pool, rdb, limiter)
	routes.RegisterDriverRoutes(r, pool, schedule, mailer, limiter)
	routes.RegisterHostRoutes(r, pool, mailer, limiter)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	port := config.GetEnv("PORT", "8081")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoLogger.Infof("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.InfoLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Forced shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server stopped.")
}
