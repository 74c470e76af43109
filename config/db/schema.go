package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/logger"
)

// schemaStatements is idempotent DDL executed on startup. The partial unique
// index on bookings is load-bearing: it is what makes double-booking of a
// (station, date, slot) impossible under concurrent inserts. Do not remove it.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(120) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'driver',
		phone_number VARCHAR(30),
		is_verified_email BOOLEAN NOT NULL DEFAULT FALSE,
		token_version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS stations (
		id UUID PRIMARY KEY,
		host_id UUID NOT NULL REFERENCES users(id),
		host_name VARCHAR(120) NOT NULL,
		title VARCHAR(160) NOT NULL,
		location VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		connector_type VARCHAR(60) NOT NULL,
		power_output VARCHAR(60) NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		review_count INT NOT NULL DEFAULT 0,
		price_per_hour INT NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		phone_number VARCHAR(30),
		monthly_earnings INT NOT NULL DEFAULT 0,
		supported_vehicle_types TEXT[] NOT NULL DEFAULT '{"2W","4W"}',
		blocked_time_slots TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS stations_host_id_idx ON stations (host_id)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		station_id UUID NOT NULL REFERENCES stations(id),
		host_id UUID NOT NULL REFERENCES users(id),
		driver_id UUID NOT NULL REFERENCES users(id),
		driver_name VARCHAR(120) NOT NULL,
		driver_phone_number VARCHAR(30) NOT NULL,
		booking_date DATE,
		start_time VARCHAR(40),
		start_at TIMESTAMPTZ,
		end_at TIMESTAMPTZ,
		duration_minutes INT,
		status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
		rating INT,
		review TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_station_id_idx ON bookings (station_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_host_id_idx ON bookings (host_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_driver_id_idx ON bookings (driver_id)`,

	// One ACTIVE booking per (station, date, slot). The application also
	// pre-checks availability, but only this index is authoritative.
	`CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_slot_uidx
		ON bookings (station_id, booking_date, start_time)
		WHERE status = 'ACTIVE'`,
}

// ActiveSlotIndexName is matched against unique-violation errors so the
// booking path can translate the race loser into a slot conflict.
const ActiveSlotIndexName = "bookings_active_slot_uidx"

// EnsureSchema applies the DDL above. Every statement is IF NOT EXISTS, so
// running it on every boot is safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	logger.InfoLogger.Info("Database schema ensured.")
	return nil
}
