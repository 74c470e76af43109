package booking_models

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/shared_models"
)

// DriverBookingOut is the driver-side booking list projection: the booking
// joined with its station and a contact number (station's own, falling back
// to the host's profile number).
type DriverBookingOut struct {
	ID                  uuid.UUID  `json:"id"`
	StationID           uuid.UUID  `json:"stationId"`
	StationTitle        string     `json:"stationTitle"`
	StationLocation     string     `json:"stationLocation"`
	StationPricePerHour int        `json:"stationPricePerHour"`
	StationImage        string     `json:"stationImage"`
	StationLat          float64    `json:"stationLat"`
	StationLng          float64    `json:"stationLng"`
	HostID              uuid.UUID  `json:"hostId"`
	HostName            string     `json:"hostName"`
	HostPhoneNumber     *string    `json:"hostPhoneNumber"`
	BookingDate         *time.Time `json:"bookingDate"`
	StartTime           string     `json:"startTime"`
	Status              string     `json:"status"`
	Rating              *int       `json:"rating"`
	Review              *string    `json:"review"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// ListBookingsByDriver returns the driver's bookings, newest first.
func ListBookingsByDriver(ctx context.Context, pool *pgxpool.Pool, driverID uuid.UUID) ([]DriverBookingOut, error) {
	rows, err := pool.Query(ctx,
		`SELECT b.id, b.station_id, s.title, s.location, s.price_per_hour, s.image,
		        s.lat, s.lng, s.host_id, s.host_name,
		        COALESCE(NULLIF(s.phone_number, ''), u.phone_number),
		        b.booking_date, b.start_time, b.status, b.rating, b.review, b.created_at
		 FROM bookings b
		 JOIN stations s ON b.station_id = s.id
		 JOIN users u ON s.host_id = u.id
		 WHERE b.driver_id = $1
		 ORDER BY b.created_at DESC`,
		driverID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for driver %s: %v", driverID, err)
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []DriverBookingOut
	for rows.Next() {
		var b DriverBookingOut
		err := rows.Scan(
			&b.ID, &b.StationID, &b.StationTitle, &b.StationLocation, &b.StationPricePerHour,
			&b.StationImage, &b.StationLat, &b.StationLng, &b.HostID, &b.HostName,
			&b.HostPhoneNumber, &b.BookingDate, &b.StartTime, &b.Status, &b.Rating,
			&b.Review, &b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// HostBookingOut is the host-side booking list projection: who booked which
// of the host's stations, with the denormalized driver contact.
type HostBookingOut struct {
	ID                  uuid.UUID  `json:"id"`
	StationID           uuid.UUID  `json:"stationId"`
	StationTitle        string     `json:"stationTitle"`
	StationLocation     string     `json:"stationLocation"`
	StationPricePerHour int        `json:"stationPricePerHour"`
	DriverID            uuid.UUID  `json:"driverId"`
	DriverName          string     `json:"driverName"`
	DriverPhoneNumber   string     `json:"driverPhoneNumber"`
	BookingDate         *time.Time `json:"bookingDate"`
	StartTime           string     `json:"startTime"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// ListBookingsByHost returns every booking against the host's stations,
// newest first.
func ListBookingsByHost(ctx context.Context, pool *pgxpool.Pool, hostID uuid.UUID) ([]HostBookingOut, error) {
	rows, err := pool.Query(ctx,
		`SELECT b.id, b.station_id, s.title, s.location, s.price_per_hour,
		        b.driver_id, b.driver_name, b.driver_phone_number,
		        b.booking_date, b.start_time, b.status, b.created_at
		 FROM bookings b
		 JOIN stations s ON b.station_id = s.id
		 WHERE b.host_id = $1
		 ORDER BY b.created_at DESC`,
		hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for host %s: %v", hostID, err)
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []HostBookingOut
	for rows.Next() {
		var b HostBookingOut
		err := rows.Scan(
			&b.ID, &b.StationID, &b.StationTitle, &b.StationLocation, &b.StationPricePerHour,
			&b.DriverID, &b.DriverName, &b.DriverPhoneNumber,
			&b.BookingDate, &b.StartTime, &b.Status, &b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan host booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// StationReview is one public review entry for a station.
type StationReview struct {
	DriverName string    `json:"driverName"`
	Rating     int       `json:"rating"`
	Review     *string   `json:"review"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListStationReviews returns the station's reviews, newest first. Only
// COMPLETED bookings that carry a rating qualify.
func ListStationReviews(ctx context.Context, pool *pgxpool.Pool, stationID uuid.UUID) ([]StationReview, error) {
	rows, err := pool.Query(ctx,
		`SELECT driver_name, rating, review, created_at FROM bookings
		 WHERE station_id = $1 AND status = $2 AND rating IS NOT NULL
		 ORDER BY created_at DESC`,
		stationID, shared_models.BookingStatusCompleted)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list reviews for station %s: %v", stationID, err)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []StationReview
	for rows.Next() {
		var r StationReview
		if err := rows.Scan(&r.DriverName, &r.Rating, &r.Review, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// HostStats is the host dashboard summary. StationHealth is the percentage
// of the host's stations that are not OFFLINE, rounded to the nearest whole
// number.
type HostStats struct {
	TotalEarnings  int `json:"totalEarnings"`
	ActiveBookings int `json:"activeBookings"`
	StationHealth  int `json:"stationHealth"`
}

// GetHostStats aggregates earnings, active booking count and station health
// for one host. A host with no stations gets all zeroes.
func GetHostStats(ctx context.Context, pool *pgxpool.Pool, hostID uuid.UUID) (*HostStats, error) {
	var totalStations, online, earnings int
	err := pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status <> $2),
		        COALESCE(SUM(monthly_earnings), 0)
		 FROM stations WHERE host_id = $1`,
		hostID, shared_models.StationStatusOffline,
	).Scan(&totalStations, &online, &earnings)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to aggregate stations for host %s: %v", hostID, err)
		return nil, fmt.Errorf("failed to compute host stats: %w", err)
	}
	if totalStations == 0 {
		return &HostStats{}, nil
	}

	var active int
	err = pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE host_id = $1 AND status = $2`,
		hostID, shared_models.BookingStatusActive,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("failed to count active bookings: %w", err)
	}

	return &HostStats{
		TotalEarnings:  earnings,
		ActiveBookings: active,
		StationHealth:  int(math.Round(float64(online) / float64(totalStations) * 100)),
	}, nil
}
