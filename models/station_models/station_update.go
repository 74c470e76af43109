package station_models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/logger"
)

// ErrNoFields is returned when a patch carries nothing to change.
var ErrNoFields = errors.New("at least one field is required")

// StationUpdate is a sparse patch: nil fields are left unchanged. Only the
// fields enumerated in setClauses can reach the database.
type StationUpdate struct {
	Title                 *string   `json:"title,omitempty"`
	Location              *string   `json:"location,omitempty"`
	Description           *string   `json:"description,omitempty"`
	ConnectorType         *string   `json:"connectorType,omitempty"`
	PowerOutput           *string   `json:"powerOutput,omitempty"`
	PricePerHour          *int      `json:"pricePerHour,omitempty"`
	Image                 *string   `json:"image,omitempty"`
	Lat                   *float64  `json:"lat,omitempty"`
	Lng                   *float64  `json:"lng,omitempty"`
	PhoneNumber           *string   `json:"phoneNumber,omitempty"`
	SupportedVehicleTypes *[]string `json:"supportedVehicleTypes,omitempty"`
	BlockedTimeSlots      *[]string `json:"blockedTimeSlots,omitempty"`
	Status                *string   `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (u StationUpdate) IsEmpty() bool {
	return u.Title == nil && u.Location == nil && u.Description == nil &&
		u.ConnectorType == nil && u.PowerOutput == nil && u.PricePerHour == nil &&
		u.Image == nil && u.Lat == nil && u.Lng == nil && u.PhoneNumber == nil &&
		u.SupportedVehicleTypes == nil && u.BlockedTimeSlots == nil && u.Status == nil
}

// setClauses walks the recognized fields and builds the UPDATE set list.
func (u StationUpdate) setClauses() ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Location != nil {
		add("location", *u.Location)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.ConnectorType != nil {
		add("connector_type", *u.ConnectorType)
	}
	if u.PowerOutput != nil {
		add("power_output", *u.PowerOutput)
	}
	if u.PricePerHour != nil {
		add("price_per_hour", *u.PricePerHour)
	}
	if u.Image != nil {
		add("image", *u.Image)
	}
	if u.Lat != nil {
		add("lat", *u.Lat)
	}
	if u.Lng != nil {
		add("lng", *u.Lng)
	}
	if u.PhoneNumber != nil {
		add("phone_number", *u.PhoneNumber)
	}
	if u.SupportedVehicleTypes != nil {
		add("supported_vehicle_types", *u.SupportedVehicleTypes)
	}
	if u.BlockedTimeSlots != nil {
		add("blocked_time_slots", *u.BlockedTimeSlots)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	return sets, args
}

// UpdateStation applies a sparse patch to one of the host's stations and
// returns the updated record. Cancelling the station's ACTIVE bookings when
// the patch takes it OFFLINE is the caller's job, against the booking table.
func UpdateStation(ctx context.Context, db *pgxpool.Pool, stationID, hostID uuid.UUID, patch StationUpdate) (*Station, error) {
	if patch.IsEmpty() {
		return nil, ErrNoFields
	}

	sets, args := patch.setClauses()
	sets = append(sets, "updated_at = now()")
	args = append(args, stationID, hostID)
	query := fmt.Sprintf(
		`UPDATE stations SET %s WHERE id = $%d AND host_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update station %s: %v", stationID, err)
		return nil, fmt.Errorf("failed to update station: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("station not found")
	}

	logger.InfoLogger.Infof("Station %s updated by host %s", stationID, hostID)
	return GetStationByID(ctx, db, stationID)
}
