package driver_controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapcharge/backend/badwords"
	"github.com/snapcharge/backend/models/user_models"
	"github.com/snapcharge/backend/utils/timeslots"
)

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testRouter(user *user_models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", user.ID.String())
			c.Set("authenticated_user", user)
		})
	}

	controller := NewDriverController(nil,
		timeslots.Schedule{StartHour: 9, SlotCount: 12, IntervalMinutes: 60}, nil)
	r.GET("/config", controller.Config)
	r.POST("/bookings", controller.CreateBooking)
	r.POST("/bookings/complete", controller.CompleteBooking)
	r.GET("/stations/:station_id/reviews", controller.StationReviews)
	return r
}

func testDriver(phone *string) *user_models.User {
	return &user_models.User{
		ID:          uuid.New(),
		Username:    "testdriver",
		Email:       "driver@test.local",
		Role:        "driver",
		PhoneNumber: phone,
	}
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestConfigListsSlotEnumeration(t *testing.T) {
	phone := "9999988888"
	r := testRouter(testDriver(&phone))

	req, _ := http.NewRequest(http.MethodGet, "/config", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Booking struct {
			TimeSlots []string `json:"timeSlots"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Booking.TimeSlots, 12)
	assert.Equal(t, "9:00 AM", body.Booking.TimeSlots[0])
	assert.Equal(t, "8:00 PM", body.Booking.TimeSlots[11])
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	r := testRouter(nil)

	w := postJSON(r, "/bookings", gin.H{"stationId": uuid.New().String()})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
}

func TestCreateBookingRejectsBadStationID(t *testing.T) {
	phone := "9999988888"
	r := testRouter(testDriver(&phone))

	w := postJSON(r, "/bookings", gin.H{"stationId": "not-a-uuid"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
}

func TestCreateBookingRejectsMissingPhone(t *testing.T) {
	r := testRouter(testDriver(nil))

	w := postJSON(r, "/bookings", gin.H{
		"stationId":   uuid.New().String(),
		"bookingDate": "2030-01-01",
		"startTime":   "9:00 AM",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_PHONE", decodeError(t, w).Error.Code)
}

func TestCompleteBookingRejectsInvalidRating(t *testing.T) {
	phone := "9999988888"
	r := testRouter(testDriver(&phone))

	w := postJSON(r, "/bookings/complete", gin.H{
		"bookingId": uuid.New().String(),
		"rating":    0,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RATING", decodeError(t, w).Error.Code)

	w = postJSON(r, "/bookings/complete", gin.H{
		"bookingId": uuid.New().String(),
		"rating":    6,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RATING", decodeError(t, w).Error.Code)
}

func TestCompleteBookingRejectsBadBookingID(t *testing.T) {
	phone := "9999988888"
	r := testRouter(testDriver(&phone))

	w := postJSON(r, "/bookings/complete", gin.H{"bookingId": "nope", "rating": 5})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
}

func TestCompleteBookingModeratesReview(t *testing.T) {
	require.NoError(t, badwords.LoadBadWords("../../badwords/en.txt"))

	phone := "9999988888"
	r := testRouter(testDriver(&phone))

	w := postJSON(r, "/bookings/complete", gin.H{
		"bookingId": uuid.New().String(),
		"rating":    1,
		"review":    "this place is shit",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REVIEW_REJECTED", decodeError(t, w).Error.Code)
}

func TestStationReviewsRejectsBadID(t *testing.T) {
	r := testRouter(nil)

	req, _ := http.NewRequest(http.MethodGet, "/stations/not-a-uuid/reviews", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Error.Code)
}
