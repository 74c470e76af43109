package driver_controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/badwords"
	"github.com/snapcharge/backend/config"
	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/booking_models"
	"github.com/snapcharge/backend/models/station_models"
	"github.com/snapcharge/backend/models/user_models"
	"github.com/snapcharge/backend/utils"
	"github.com/snapcharge/backend/utils/mail"
	"github.com/snapcharge/backend/utils/timeslots"
)

const (
	defaultSearchRadiusKm = 20.0
	serviceFee            = 10
)

// DriverController handles the driver-facing surface: station search,
// booking lifecycle and reviews.
type DriverController struct {
	db       *pgxpool.Pool
	schedule timeslots.Schedule
	mailer   *mail.Mailer
}

// NewDriverController creates a DriverController with its dependencies.
func NewDriverController(db *pgxpool.Pool, schedule timeslots.Schedule, mailer *mail.Mailer) *DriverController {
	return &DriverController{db: db, schedule: schedule, mailer: mailer}
}

func respondDomainError(c *gin.Context, err error) bool {
	var domainErr *booking_models.DomainError
	if errors.As(err, &domainErr) {
		utils.AbortWithError(c, domainErr.Status, domainErr.Code, domainErr.Message)
		return true
	}
	return false
}

// sweep reconciles expired bookings before any availability-sensitive read.
// A sweep failure is logged and swallowed: stale statuses degrade the
// response, they do not invalidate it.
func (dc *DriverController) sweep(c *gin.Context) {
	if _, err := booking_models.ExpireBookings(c.Request.Context(), dc.db, time.Now()); err != nil {
		logger.WarnLogger.Warnf("Expiry sweep failed: %v", err)
	}
}

// Config returns the static driver app configuration: search defaults,
// filter tags, status legend and the bookable slot enumeration.
func (dc *DriverController) Config(c *gin.Context) {
	lat, _ := strconv.ParseFloat(config.GetEnv("DEFAULT_CITY_LAT", "18.5204"), 64)
	lng, _ := strconv.ParseFloat(config.GetEnv("DEFAULT_CITY_LNG", "73.8567"), 64)
	city := config.GetEnv("DEFAULT_CITY_NAME", "Pune")

	c.JSON(http.StatusOK, gin.H{
		"location":          gin.H{"name": city, "lat": lat, "lng": lng},
		"locationLabel":     city + " - 20 km radius",
		"searchRadiusKm":    defaultSearchRadiusKm,
		"searchPlaceholder": "Search by area or host",
		"filterTags": []gin.H{
			{"id": station_models.TagFastCharge, "label": "Fast Charge"},
			{"id": station_models.TagType2, "label": "Type 2"},
			{"id": station_models.TagUnder200, "label": "< INR 200/hr"},
		},
		"statusOptions": []gin.H{
			{"value": "ALL", "label": "All Status"},
			{"value": "AVAILABLE", "label": "Available"},
			{"value": "BUSY", "label": "Busy"},
			{"value": "OFFLINE", "label": "Offline"},
		},
		"vehicleTypeOptions": []gin.H{
			{"value": "ALL", "label": "All Vehicles"},
			{"value": "2W", "label": "2 Wheeler"},
			{"value": "4W", "label": "4 Wheeler"},
		},
		"booking": gin.H{
			"serviceFee": serviceFee,
			"timeSlots":  dc.schedule.Labels(),
		},
	})
}

// Search lists stations around a point with merged availability for a date.
func (dc *DriverController) Search(c *gin.Context) {
	dc.sweep(c)

	filter := station_models.SearchFilter{
		Query:       strings.TrimSpace(c.Query("q")),
		VehicleType: c.Query("vehicle_type"),
		Tags:        c.QueryArray("tags"),
	}
	if status := c.Query("status"); status != "" && status != "ALL" {
		filter.Status = status
	}
	if filter.VehicleType == "ALL" {
		filter.VehicleType = ""
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng must be numbers.")
			return
		}
		filter.Lat, filter.Lng, filter.HasOrigin = lat, lng, true
	}

	radiusKm := defaultSearchRadiusKm
	if radiusStr := c.Query("radius_km"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || parsed <= 0 {
			utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "radius_km must be a positive number.")
			return
		}
		radiusKm = parsed
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.AbortWithError(c, http.StatusBadRequest, "INVALID_DATE", "date must be in YYYY-MM-DD format.")
			return
		}
		date = parsed
	}

	stations, err := station_models.ListStations(c.Request.Context(), dc.db)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to search stations.")
		return
	}

	var candidates []station_models.Station
	var candidateIDs []uuid.UUID
	for _, s := range stations {
		if !filter.Matches(&s) {
			continue
		}
		if filter.HasOrigin &&
			station_models.DistanceKm(filter.Lat, filter.Lng, s.Lat, s.Lng) > radiusKm {
			continue
		}
		candidates = append(candidates, s)
		candidateIDs = append(candidateIDs, s.ID)
	}

	booked, err := booking_models.FetchBookedSlots(c.Request.Context(), dc.db, candidateIDs, date)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to resolve availability.")
		return
	}

	results := make([]station_models.StationOut, 0, len(candidates))
	for _, s := range candidates {
		results = append(results, station_models.Project(s, filter, booked[s.ID]))
	}
	if filter.HasOrigin {
		station_models.SortByDistance(results)
	}

	c.JSON(http.StatusOK, results)
}

// CreateBooking reserves a slot for the authenticated driver and returns
// the refreshed station projection for the booked date.
func (dc *DriverController) CreateBooking(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		StationID       string   `json:"stationId" binding:"required"`
		BookingDate     string   `json:"bookingDate"`
		StartTime       string   `json:"startTime"`
		DurationMinutes *int     `json:"durationMinutes"`
		UserLat         *float64 `json:"userLat"`
		UserLng         *float64 `json:"userLng"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "stationId must be a valid UUID.")
		return
	}

	booking, err := booking_models.CreateBooking(c.Request.Context(), dc.db, dc.schedule,
		booking_models.DriverIdentity{ID: user.ID, Name: user.Username, PhoneNumber: user.PhoneNumber},
		booking_models.CreateBookingInput{
			StationID:       stationID,
			BookingDate:     req.BookingDate,
			StartTime:       req.StartTime,
			DurationMinutes: req.DurationMinutes,
		})
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		logger.ErrorLogger.Errorf("Booking creation failed: %v", err)
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to create booking.")
		return
	}

	station, err := station_models.GetStationByID(c.Request.Context(), dc.db, stationID)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to load station.")
		return
	}

	dc.notifyConfirmation(user, station, booking)

	filter := station_models.SearchFilter{}
	if req.UserLat != nil && req.UserLng != nil {
		filter.Lat, filter.Lng, filter.HasOrigin = *req.UserLat, *req.UserLng, true
	}
	booked, err := booking_models.FetchBookedSlots(c.Request.Context(), dc.db,
		[]uuid.UUID{stationID}, booking.BookingDate.UTC())
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to resolve availability.")
		return
	}

	c.JSON(http.StatusCreated, station_models.Project(*station, filter, booked[stationID]))
}

func (dc *DriverController) notifyConfirmation(user *user_models.User, station *station_models.Station, booking *booking_models.Booking) {
	if dc.mailer == nil {
		return
	}
	notification := mail.BookingNotification{
		DriverName:      user.Username,
		DriverEmail:     user.Email,
		StationTitle:    station.Title,
		StationLocation: station.Location,
		BookingDate:     booking.BookingDate.Format("2006-01-02"),
		StartTime:       booking.StartTime,
	}
	// Fire and forget: a slow or dead SMTP server must not hold the response.
	go func() {
		if err := dc.mailer.SendBookingConfirmation(notification); err != nil {
			logger.ErrorLogger.Errorf("Booking confirmation email failed: %v", err)
		}
	}()
}

// CompleteBooking closes a booking with a rating and optional review.
func (dc *DriverController) CompleteBooking(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		BookingID string  `json:"bookingId" binding:"required"`
		Rating    int     `json:"rating"`
		Review    *string `json:"review"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "bookingId must be a valid UUID.")
		return
	}
	if req.Review != nil && badwords.ContainsBadWords(*req.Review) {
		utils.AbortWithError(c, http.StatusBadRequest, "REVIEW_REJECTED", "Review contains inappropriate language.")
		return
	}

	booking, err := booking_models.CompleteBooking(c.Request.Context(), dc.db, bookingID, user.ID, req.Rating, req.Review)
	if err != nil {
		if respondDomainError(c, err) {
			return
		}
		logger.ErrorLogger.Errorf("Booking completion failed: %v", err)
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to complete booking.")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings returns the driver's booking history, newest first.
func (dc *DriverController) ListBookings(c *gin.Context) {
	dc.sweep(c)

	user, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := booking_models.ListBookingsByDriver(c.Request.Context(), dc.db, user.ID)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to list bookings.")
		return
	}
	if bookings == nil {
		bookings = []booking_models.DriverBookingOut{}
	}
	c.JSON(http.StatusOK, bookings)
}

// StationReviews returns the public reviews of one station, newest first.
func (dc *DriverController) StationReviews(c *gin.Context) {
	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "station_id must be a valid UUID.")
		return
	}

	reviews, err := booking_models.ListStationReviews(c.Request.Context(), dc.db, stationID)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to list reviews.")
		return
	}
	if reviews == nil {
		reviews = []booking_models.StationReview{}
	}
	c.JSON(http.StatusOK, reviews)
}

func currentUser(c *gin.Context) (*user_models.User, bool) {
	value, exists := c.Get("authenticated_user")
	if !exists {
		utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required.")
		return nil, false
	}
	user, ok := value.(*user_models.User)
	if !ok {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Invalid authenticated user.")
		return nil, false
	}
	return user, true
}
