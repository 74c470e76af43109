package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	rate, err := ParseCustomRate("10-2m")
	require.NoError(t, err)
	assert.EqualValues(t, 10, rate.Limit)
	assert.Equal(t, 2*time.Minute, rate.Period)

	rate, err = ParseCustomRate("5-1h")
	require.NoError(t, err)
	assert.EqualValues(t, 5, rate.Limit)
	assert.Equal(t, time.Hour, rate.Period)

	rate, err = ParseCustomRate("20-30s")
	require.NoError(t, err)
	assert.EqualValues(t, 20, rate.Limit)
	assert.Equal(t, 30*time.Second, rate.Period)

	_, err = ParseCustomRate("nope")
	assert.Error(t, err)
	_, err = ParseCustomRate("10-2d")
	assert.Error(t, err)
	_, err = ParseCustomRate("x-2m")
	assert.Error(t, err)
}

func TestLimitEnforcesRate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(nil) // in-memory store

	r := gin.New()
	r.GET("/limited", limiter.Limit("2-1m", "test-limited"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestLimitInvalidRatePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(nil)

	r := gin.New()
	r.GET("/open", limiter.Limit("garbage", "test-open"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/open", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
