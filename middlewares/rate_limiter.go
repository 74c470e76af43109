package middlewares

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redislib "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/snapcharge/backend/logger"
)

// RateLimiter builds per-route rate limiting middleware backed by Redis.
// Constructed once in main with the shared Redis client; a nil client falls
// back to an in-memory store, which is fine for single-instance deployments
// and tests.
type RateLimiter struct {
	rdb *redislib.Client
}

// NewRateLimiter wraps a Redis client for rate limiter stores.
func NewRateLimiter(rdb *redislib.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// ParseCustomRate parses rates like "10-2m", "5-1h" or "20-10s" into a
// limiter.Rate.
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	var period time.Duration
	switch {
	case strings.HasSuffix(durationStr, "s"):
		seconds, err := strconv.Atoi(strings.TrimSuffix(durationStr, "s"))
		if err != nil {
			return limiter.Rate{}, fmt.Errorf("invalid seconds duration: %v", err)
		}
		period = time.Duration(seconds) * time.Second
	case strings.HasSuffix(durationStr, "m"):
		minutes, err := strconv.Atoi(strings.TrimSuffix(durationStr, "m"))
		if err != nil {
			return limiter.Rate{}, fmt.Errorf("invalid minutes duration: %v", err)
		}
		period = time.Duration(minutes) * time.Minute
	case strings.HasSuffix(durationStr, "h"):
		hours, err := strconv.Atoi(strings.TrimSuffix(durationStr, "h"))
		if err != nil {
			return limiter.Rate{}, fmt.Errorf("invalid hours duration: %v", err)
		}
		period = time.Duration(hours) * time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	return limiter.Rate{Period: period, Limit: int64(limit)}, nil
}

// Limit returns middleware enforcing rateStr on one route. routeID keys the
// backing store so different routes do not share buckets.
func (r *RateLimiter) Limit(rateStr, routeID string) gin.HandlerFunc {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid rate %q for route %s, rate limiting disabled: %v", rateStr, routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	store, err := r.store(routeID, rate.Period)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create rate limiter store for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}

	return ginmiddleware.NewMiddleware(limiter.New(store, rate))
}

func (r *RateLimiter) store(routeID string, period time.Duration) (limiter.Store, error) {
	if r.rdb == nil {
		return memorystore.NewStore(), nil
	}
	return redisstore.NewStoreWithOptions(r.rdb, limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	})
}
