package booking_models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapcharge/backend/config/db"
	"github.com/snapcharge/backend/logger"
	"github.com/snapcharge/backend/models/shared_models"
	"github.com/snapcharge/backend/models/station_models"
	"github.com/snapcharge/backend/utils/timeslots"
)

// Booking is one reserved slot. Driver name and phone are denormalized at
// creation time so later profile edits do not rewrite booking history.
// start_at/end_at stay NULL until the expiry sweep first needs them.
type Booking struct {
	ID                uuid.UUID  `json:"id"`
	StationID         uuid.UUID  `json:"stationId"`
	HostID            uuid.UUID  `json:"hostId"`
	DriverID          uuid.UUID  `json:"driverId"`
	DriverName        string     `json:"driverName"`
	DriverPhoneNumber string     `json:"driverPhoneNumber"`
	BookingDate       *time.Time `json:"bookingDate"`
	StartTime         string     `json:"startTime"`
	StartAt           *time.Time `json:"startAt"`
	EndAt             *time.Time `json:"endAt"`
	DurationMinutes   *int       `json:"durationMinutes"`
	Status            string     `json:"status"`
	Rating            *int       `json:"rating"`
	Review            *string    `json:"review"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

const bookingColumns = `id, station_id, host_id, driver_id, driver_name, driver_phone_number,
	booking_date, start_time, start_at, end_at, duration_minutes, status, rating, review,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.ID, &b.StationID, &b.HostID, &b.DriverID, &b.DriverName, &b.DriverPhoneNumber,
		&b.BookingDate, &b.StartTime, &b.StartAt, &b.EndAt, &b.DurationMinutes,
		&b.Status, &b.Rating, &b.Review, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DriverIdentity is what the booking engine needs to know about the
// requesting driver. The auth middleware resolves it before any handler runs.
type DriverIdentity struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber *string
}

// CreateBookingInput carries the driver's booking request.
type CreateBookingInput struct {
	StationID       uuid.UUID
	BookingDate     string // YYYY-MM-DD
	StartTime       string // slot label, e.g. "1:00 PM"
	DurationMinutes *int
}

// CreateBooking runs the booking creation state transition. Preconditions
// are checked in a fixed order so each failure mode keeps a distinct error
// code. The existence check against other ACTIVE bookings is advisory only;
// the partial unique index is the authoritative guard, and a unique
// violation raised by a concurrent commit is translated to the same
// slot-conflict error the advisory check produces.
func CreateBooking(ctx context.Context, pool *pgxpool.Pool, schedule timeslots.Schedule, driver DriverIdentity, in CreateBookingInput) (*Booking, error) {
	if driver.PhoneNumber == nil || strings.TrimSpace(*driver.PhoneNumber) == "" {
		return nil, ErrMissingPhone
	}

	station, err := station_models.GetStationByID(ctx, pool, in.StationID)
	if err != nil {
		return nil, ErrStationNotFound
	}
	if station.Status == shared_models.StationStatusOffline {
		return nil, ErrStationUnavailable
	}

	if strings.TrimSpace(in.BookingDate) == "" {
		return nil, ErrMissingDate
	}
	bookingDate, err := time.Parse("2006-01-02", in.BookingDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if bookingDate.Before(today) {
		return nil, ErrInvalidDate
	}

	if strings.TrimSpace(in.StartTime) == "" {
		return nil, ErrMissingTimeSlot
	}
	if !schedule.Contains(in.StartTime) {
		return nil, ErrUnknownTimeSlot
	}
	for _, blocked := range station.BlockedTimeSlots {
		if blocked == in.StartTime {
			return nil, ErrTimeSlotBlocked
		}
	}

	var taken bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE station_id = $1 AND booking_date = $2 AND start_time = $3 AND status = $4
		)`,
		station.ID, bookingDate, in.StartTime, shared_models.BookingStatusActive,
	).Scan(&taken)
	if err != nil {
		logger.ErrorLogger.Errorf("Slot availability check failed for station %s: %v", station.ID, err)
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		return nil, ErrTimeSlotUnavailable
	}

	bookingID, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking := &Booking{
		ID:                bookingID,
		StationID:         station.ID,
		HostID:            station.HostID,
		DriverID:          driver.ID,
		DriverName:        driver.Name,
		DriverPhoneNumber: *driver.PhoneNumber,
		BookingDate:       &bookingDate,
		StartTime:         in.StartTime,
		DurationMinutes:   in.DurationMinutes,
		Status:            shared_models.BookingStatusActive,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (id, station_id, host_id, driver_id, driver_name,
			driver_phone_number, booking_date, start_time, duration_minutes, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 RETURNING created_at, updated_at`,
		booking.ID, booking.StationID, booking.HostID, booking.DriverID, booking.DriverName,
		booking.DriverPhoneNumber, bookingDate, booking.StartTime, booking.DurationMinutes,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrTimeSlotUnavailable
		}
		logger.ErrorLogger.Errorf("Failed to insert booking for station %s: %v", station.ID, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// Earnings move with the booking insert; a failed commit rolls back both.
	_, err = tx.Exec(ctx,
		`UPDATE stations SET monthly_earnings = monthly_earnings + price_per_hour,
			updated_at = now() WHERE id = $1`,
		station.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update earnings for station %s: %v", station.ID, err)
		return nil, fmt.Errorf("failed to update station earnings: %w", err)
	}

	if station.PhoneNumber == nil || *station.PhoneNumber == "" {
		_, err = tx.Exec(ctx,
			`UPDATE stations SET phone_number = u.phone_number, updated_at = now()
			 FROM users u
			 WHERE stations.id = $1 AND u.id = stations.host_id
			   AND u.phone_number IS NOT NULL AND u.phone_number <> ''
			   AND (stations.phone_number IS NULL OR stations.phone_number = '')`,
			station.ID)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to backfill phone for station %s: %v", station.ID, err)
			return nil, fmt.Errorf("failed to backfill station phone: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrTimeSlotUnavailable
		}
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s created: station %s, %s %s",
		booking.ID, station.ID, in.BookingDate, in.StartTime)
	return booking, nil
}

func isActiveSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && pgErr.ConstraintName == db.ActiveSlotIndexName
}

// CompleteBooking runs the ACTIVE -> COMPLETED transition for the booking's
// own driver, then recomputes the station's rating aggregate.
func CompleteBooking(ctx context.Context, pool *pgxpool.Pool, bookingID, driverID uuid.UUID, rating int, review *string) (*Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	row := pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND driver_id = $2`,
		bookingID, driverID)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", bookingID, err)
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	switch booking.Status {
	case shared_models.BookingStatusCompleted:
		return nil, ErrAlreadyCompleted
	case shared_models.BookingStatusCancelled:
		return nil, ErrBookingCancelled
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE bookings SET status = $2, rating = $3, review = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		booking.ID, shared_models.BookingStatusCompleted, rating, review,
	).Scan(&booking.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to complete booking %s: %v", booking.ID, err)
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	booking.Status = shared_models.BookingStatusCompleted
	booking.Rating = &rating
	booking.Review = review

	if err := recomputeStationRating(ctx, tx, booking.StationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s completed with rating %d", booking.ID, rating)
	return booking, nil
}

// MeanRating returns the arithmetic mean of ratings rounded to one decimal.
// Zero ratings yields 0.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}

// recomputeStationRating rescans every rated COMPLETED booking for the
// station and rewrites the stored aggregate. A full rescan rather than an
// incremental running average: deterministic from durable state, so
// concurrent completions converge instead of drifting.
func recomputeStationRating(ctx context.Context, tx pgx.Tx, stationID uuid.UUID) error {
	rows, err := tx.Query(ctx,
		`SELECT rating FROM bookings
		 WHERE station_id = $1 AND status = $2 AND rating IS NOT NULL`,
		stationID, shared_models.BookingStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to scan ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to scan ratings: %w", err)
	}
	if len(ratings) == 0 {
		return nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE stations SET rating = $2, review_count = $3, updated_at = now() WHERE id = $1`,
		stationID, MeanRating(ratings), len(ratings))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update rating for station %s: %v", stationID, err)
		return fmt.Errorf("failed to update station rating: %w", err)
	}
	return nil
}

// CancelActiveBookingsByStation bulk-cancels every ACTIVE booking for a
// station. Used when a host takes the station OFFLINE. Idempotent: already
// cancelled rows are not touched and re-running reports zero.
func CancelActiveBookingsByStation(ctx context.Context, pool *pgxpool.Pool, stationID uuid.UUID) (int64, error) {
	tag, err := pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now()
		 WHERE station_id = $1 AND status = $3`,
		stationID, shared_models.BookingStatusCancelled, shared_models.BookingStatusActive)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel bookings for station %s: %v", stationID, err)
		return 0, fmt.Errorf("failed to cancel bookings: %w", err)
	}
	if tag.RowsAffected() > 0 {
		logger.InfoLogger.Infof("Cancelled %d active bookings for station %s", tag.RowsAffected(), stationID)
	}
	return tag.RowsAffected(), nil
}

// ExpireBookings reconciles booking status with elapsed wall-clock time. It
// runs lazily at the start of availability-sensitive reads instead of on a
// scheduler. Phase one backfills missing start_at/end_at from the date+label
// pair; phase two bulk-completes everything past due. Safe to re-run: a
// second pass with nothing due touches zero rows.
func ExpireBookings(ctx context.Context, pool *pgxpool.Pool, now time.Time) (int64, error) {
	rows, err := pool.Query(ctx,
		`SELECT id, booking_date, start_time, start_at, duration_minutes FROM bookings
		 WHERE status = $1 AND end_at IS NULL
		   AND booking_date IS NOT NULL AND start_time <> ''`,
		shared_models.BookingStatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to query backfill candidates: %w", err)
	}

	type backfill struct {
		id      uuid.UUID
		startAt time.Time
		endAt   time.Time
	}
	var pending []backfill
	for rows.Next() {
		var (
			id          uuid.UUID
			bookingDate time.Time
			startTime   string
			startAt     *time.Time
			duration    *int
		)
		if err := rows.Scan(&id, &bookingDate, &startTime, &startAt, &duration); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan backfill candidate: %w", err)
		}
		start := time.Time{}
		if startAt != nil {
			start = *startAt
		} else {
			parsed, err := timeslots.At(bookingDate, startTime)
			if err != nil {
				// Unparseable label: skip rather than fail the sweep.
				logger.WarnLogger.Warnf("Skipping booking %s with unparseable start time %q", id, startTime)
				continue
			}
			start = parsed
		}
		minutes := timeslots.DefaultDurationMinutes
		if duration != nil && *duration > 0 {
			minutes = *duration
		}
		pending = append(pending, backfill{
			id:      id,
			startAt: start,
			endAt:   start.Add(time.Duration(minutes) * time.Minute),
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to read backfill candidates: %w", err)
	}
	rows.Close()

	var touched int64
	for _, b := range pending {
		tag, err := pool.Exec(ctx,
			`UPDATE bookings SET start_at = $2, end_at = $3, updated_at = now()
			 WHERE id = $1 AND end_at IS NULL`,
			b.id, b.startAt, b.endAt)
		if err != nil {
			return touched, fmt.Errorf("failed to backfill booking %s: %w", b.id, err)
		}
		touched += tag.RowsAffected()
	}

	tag, err := pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now()
		 WHERE status = $1 AND end_at IS NOT NULL AND end_at < $3`,
		shared_models.BookingStatusActive, shared_models.BookingStatusCompleted, now)
	if err != nil {
		return touched, fmt.Errorf("failed to expire bookings by end time: %w", err)
	}
	touched += tag.RowsAffected()

	// Legacy rows that never got timestamps: date alone decides.
	today := now.UTC().Truncate(24 * time.Hour)
	tag, err = pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now()
		 WHERE status = $1 AND end_at IS NULL
		   AND booking_date IS NOT NULL AND booking_date < $3`,
		shared_models.BookingStatusActive, shared_models.BookingStatusCompleted, today)
	if err != nil {
		return touched, fmt.Errorf("failed to expire bookings by date: %w", err)
	}
	touched += tag.RowsAffected()

	if touched > 0 {
		logger.InfoLogger.Infof("Expiry sweep touched %d bookings", touched)
	}
	return touched, nil
}

// FetchBookedSlots returns, per station, the slot labels with an ACTIVE
// booking on the given date. Recomputed on every call; availability is a
// projection of the booking table, never cached on the station.
func FetchBookedSlots(ctx context.Context, pool *pgxpool.Pool, stationIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]string, error) {
	slots := make(map[uuid.UUID][]string)
	if len(stationIDs) == 0 {
		return slots, nil
	}

	rows, err := pool.Query(ctx,
		`SELECT station_id, start_time FROM bookings
		 WHERE station_id = ANY($1) AND status = $2 AND booking_date = $3
		   AND start_time <> ''`,
		stationIDs, shared_models.BookingStatusActive, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booked slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stationID uuid.UUID
		var label string
		if err := rows.Scan(&stationID, &label); err != nil {
			return nil, fmt.Errorf("failed to scan booked slot: %w", err)
		}
		slots[stationID] = append(slots[stationID], label)
	}
	return slots, rows.Err()
}

// GetBookingByID fetches one booking without an ownership constraint.
func GetBookingByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Booking, error) {
	row := pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return booking, nil
}
