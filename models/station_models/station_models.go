package station_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/shared_models"
)

// Station is a host-owned charging point. The booking engine reads stations
// and is allowed to mutate exactly three things: monthly earnings, the
// rating aggregate, and a one-time phone-number backfill.
type Station struct {
	ID                    uuid.UUID `json:"id"`
	HostID                uuid.UUID `json:"hostId"`
	HostName              string    `json:"hostName"`
	Title                 string    `json:"title"`
	Location              string    `json:"location"`
	Description           string    `json:"description"`
	ConnectorType         string    `json:"connectorType"`
	PowerOutput           string    `json:"powerOutput"`
	Image                 string    `json:"image"`
	Rating                float64   `json:"rating"`
	ReviewCount           int       `json:"reviewCount"`
	PricePerHour          int       `json:"pricePerHour"`
	Status                string    `json:"status"`
	Lat                   float64   `json:"lat"`
	Lng                   float64   `json:"lng"`
	PhoneNumber           *string   `json:"phoneNumber"`
	MonthlyEarnings       int       `json:"monthlyEarnings"`
	SupportedVehicleTypes []string  `json:"supportedVehicleTypes"`
	BlockedTimeSlots      []string  `json:"blockedTimeSlots"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

const stationColumns = `id, host_id, host_name, title, location, description, connector_type,
	power_output, image, rating, review_count, price_per_hour, status, lat, lng,
	phone_number, monthly_earnings, supported_vehicle_types, blocked_time_slots,
	created_at, updated_at`

func scanStation(row pgx.Row) (*Station, error) {
	s := &Station{}
	err := row.Scan(
		&s.ID, &s.HostID, &s.HostName, &s.Title, &s.Location, &s.Description,
		&s.ConnectorType, &s.PowerOutput, &s.Image, &s.Rating, &s.ReviewCount,
		&s.PricePerHour, &s.Status, &s.Lat, &s.Lng, &s.PhoneNumber,
		&s.MonthlyEarnings, &s.SupportedVehicleTypes, &s.BlockedTimeSlots,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewStation builds an unsaved Station with a fresh UUIDv7.
func NewStation(hostID uuid.UUID, hostName string) (*Station, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for station: %w", err)
	}
	now := time.Now()
	return &Station{
		ID:        id,
		HostID:    hostID,
		HostName:  hostName,
		Status:    shared_models.StationStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CreateStation inserts a station record.
func CreateStation(ctx context.Context, db *pgxpool.Pool, s *Station) (*Station, error) {
	query := `
		INSERT INTO stations (
			id, host_id, host_name, title, location, description, connector_type,
			power_output, image, rating, review_count, price_per_hour, status,
			lat, lng, phone_number, monthly_earnings, supported_vehicle_types,
			blocked_time_slots
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING created_at, updated_at`

	err := db.QueryRow(ctx, query,
		s.ID, s.HostID, s.HostName, s.Title, s.Location, s.Description,
		s.ConnectorType, s.PowerOutput, s.Image, s.Rating, s.ReviewCount,
		s.PricePerHour, s.Status, s.Lat, s.Lng, s.PhoneNumber,
		s.MonthlyEarnings, s.SupportedVehicleTypes, s.BlockedTimeSlots,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert station %s: %v", s.ID, err)
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	logger.InfoLogger.Infof("Station %s created for host %s", s.ID, s.HostID)
	return s, nil
}

// GetStationByID fetches one station.
func GetStationByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Station, error) {
	row := db.QueryRow(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = $1`, id)
	s, err := scanStation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("station not found")
		}
		logger.ErrorLogger.Errorf("Failed to fetch station %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching station: %w", err)
	}
	return s, nil
}

// ListStations returns every station. Filtering happens in memory; the
// deployment is single-city scale and the filters compose with haversine
// distance, which has to run in process anyway.
func ListStations(ctx context.Context, db *pgxpool.Pool) ([]Station, error) {
	rows, err := db.Query(ctx, `SELECT `+stationColumns+` FROM stations ORDER BY created_at DESC`)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list stations: %v", err)
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()
	return collectStations(rows)
}

// ListStationsByHost returns a host's stations, newest first.
func ListStationsByHost(ctx context.Context, db *pgxpool.Pool, hostID uuid.UUID) ([]Station, error) {
	rows, err := db.Query(ctx,
		`SELECT `+stationColumns+` FROM stations WHERE host_id = $1 ORDER BY created_at DESC`, hostID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list stations for host %s: %v", hostID, err)
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()
	return collectStations(rows)
}

func collectStations(rows pgx.Rows) ([]Station, error) {
	var stations []Station
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, *s)
	}
	return stations, rows.Err()
}

// BackfillPhoneNumber sets the station's contact number only when it is
// still empty. One-time convenience during booking creation.
func BackfillPhoneNumber(ctx context.Context, db *pgxpool.Pool, stationID uuid.UUID, phone string) error {
	_, err := db.Exec(ctx,
		`UPDATE stations SET phone_number = $2, updated_at = now()
		 WHERE id = $1 AND (phone_number IS NULL OR phone_number = '')`,
		stationID, phone)
	return err
}
