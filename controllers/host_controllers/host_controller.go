package host_controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/booking_models"
	"github.com/snapcharge/backend/models/shared_models"
	"github.com/snapcharge/backend/models/station_models"
	"github.com/snapcharge/backend/models/user_models"
	"github.com/snapcharge/backend/utils"
	"github.com/snapcharge/backend/utils/mail"
)

const defaultStationImage = "https://picsum.photos/400/300?random=99"

// HostController handles the host-facing surface: dashboard stats, station
// management and booking oversight.
type HostController struct {
	db     *pgxpool.Pool
	mailer *mail.Mailer
}

// NewHostController creates a HostController with its dependencies.
func NewHostController(db *pgxpool.Pool, mailer *mail.Mailer) *HostController {
	return &HostController{db: db, mailer: mailer}
}

// Stats returns the host dashboard summary.
func (hc *HostController) Stats(c *gin.Context) {
	if _, err := booking_models.ExpireBookings(c.Request.Context(), hc.db, time.Now()); err != nil {
		logger.WarnLogger.Warnf("Expiry sweep failed: %v", err)
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := booking_models.GetHostStats(c.Request.Context(), hc.db, user.ID)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to compute stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListStations returns the host's stations, newest first.
func (hc *HostController) ListStations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stations, err := station_models.ListStationsByHost(c.Request.Context(), hc.db, user.ID)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to list stations.")
		return
	}
	if stations == nil {
		stations = []station_models.Station{}
	}
	c.JSON(http.StatusOK, stations)
}

// CreateStation registers a new charging station for the host.
func (hc *HostController) CreateStation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Title                 string   `json:"title" binding:"required"`
		Location              string   `json:"location" binding:"required"`
		Description           string   `json:"description"`
		ConnectorType         string   `json:"connectorType" binding:"required"`
		PowerOutput           string   `json:"powerOutput" binding:"required"`
		PricePerHour          int      `json:"pricePerHour" binding:"required,min=1"`
		Image                 string   `json:"image"`
		Lat                   float64  `json:"lat" binding:"required"`
		Lng                   float64  `json:"lng" binding:"required"`
		PhoneNumber           *string  `json:"phoneNumber"`
		SupportedVehicleTypes []string `json:"supportedVehicleTypes"`
		BlockedTimeSlots      []string `json:"blockedTimeSlots"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	for _, vt := range req.SupportedVehicleTypes {
		if !shared_models.SupportedVehicleTypes[vt] {
			utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unsupported vehicle type: "+vt)
			return
		}
	}
	if len(req.SupportedVehicleTypes) == 0 {
		req.SupportedVehicleTypes = []string{"2W", "4W"}
	}
	if req.BlockedTimeSlots == nil {
		req.BlockedTimeSlots = []string{}
	}

	station, err := station_models.NewStation(user.ID, user.Username)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to create station.")
		return
	}
	station.Title = req.Title
	station.Location = req.Location
	station.Description = req.Description
	station.ConnectorType = req.ConnectorType
	station.PowerOutput = req.PowerOutput
	station.PricePerHour = req.PricePerHour
	station.Lat = req.Lat
	station.Lng = req.Lng
	station.SupportedVehicleTypes = req.SupportedVehicleTypes
	station.BlockedTimeSlots = req.BlockedTimeSlots

	station.Image = strings.TrimSpace(req.Image)
	if station.Image == "" {
		station.Image = defaultStationImage
	}
	if req.PhoneNumber != nil && strings.TrimSpace(*req.PhoneNumber) != "" {
		station.PhoneNumber = req.PhoneNumber
	} else {
		station.PhoneNumber = user.PhoneNumber
	}

	created, err := station_models.CreateStation(c.Request.Context(), hc.db, station)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to create station.")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateStation applies a sparse patch to one of the host's stations. When
// the patch takes the station OFFLINE, every ACTIVE booking for it is
// cancelled and the affected drivers are notified.
func (hc *HostController) UpdateStation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stationID, err := uuid.Parse(c.Param("station_id"))
	if err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "station_id must be a valid UUID.")
		return
	}

	var patch station_models.StationUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if patch.Status != nil && !shared_models.ValidStationStatuses[*patch.Status] {
		utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid station status: "+*patch.Status)
		return
	}

	goingOffline := patch.Status != nil && *patch.Status == shared_models.StationStatusOffline

	var affected []booking_models.HostBookingOut
	if goingOffline {
		// Snapshot the ACTIVE bookings before cancelling so drivers can be
		// notified afterwards.
		bookings, err := booking_models.ListBookingsByHost(c.Request.Context(), hc.db, user.ID)
		if err == nil {
			for _, b := range bookings {
				if b.StationID == stationID && b.Status == shared_models.BookingStatusActive {
					affected = append(affected, b)
				}
			}
		}
	}

	station, err := station_models.UpdateStation(c.Request.Context(), hc.db, stationID, user.ID, patch)
	if err != nil {
		if errors.Is(err, station_models.ErrNoFields) {
			utils.AbortWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "At least one field is required.")
			return
		}
		utils.AbortWithError(c, http.StatusNotFound, "NOT_FOUND", "Station not found.")
		return
	}

	if goingOffline {
		cancelled, err := booking_models.CancelActiveBookingsByStation(c.Request.Context(), hc.db, stationID)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to cancel bookings for offline station %s: %v", stationID, err)
		} else if cancelled > 0 {
			hc.notifyCancellations(c, station, affected)
		}
	}

	c.JSON(http.StatusOK, station)
}

func (hc *HostController) notifyCancellations(c *gin.Context, station *station_models.Station, bookings []booking_models.HostBookingOut) {
	if hc.mailer == nil {
		return
	}
	for _, b := range bookings {
		driver, err := user_models.GetUserByID(c.Request.Context(), hc.db, b.DriverID)
		if err != nil {
			continue
		}
		notification := mail.BookingNotification{
			DriverName:      b.DriverName,
			DriverEmail:     driver.Email,
			StationTitle:    station.Title,
			StationLocation: station.Location,
			StartTime:       b.StartTime,
		}
		if b.BookingDate != nil {
			notification.BookingDate = b.BookingDate.Format("2006-01-02")
		}
		go func(n mail.BookingNotification) {
			if err := hc.mailer.SendBookingCancellation(n); err != nil {
				logger.ErrorLogger.Errorf("Cancellation email failed: %v", err)
			}
		}(notification)
	}
}

// ListBookings returns every booking against the host's stations.
func (hc *HostController) ListBookings(c *gin.Context) {
	if _, err := booking_models.ExpireBookings(c.Request.Context(), hc.db, time.Now()); err != nil {
		logger.WarnLogger.Warnf("Expiry sweep failed: %v", err)
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	bookings, err := booking_models.ListBookingsByHost(c.Request.Context(), hc.db, user.ID)
	if err != nil {
		utils.AbortWithError(c, http.StatusInternalServerError, "SERVER_ERROR", "Failed to list bookings.")
		return
	}
	if bookings == nil {
		bookings = []booking_models.HostBookingOut{}
	}
	c.JSON(http.StatusOK, bookings)
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
