package booking_models

import "net/http"

// DomainError is a booking-flow failure that maps to a stable machine code
// in the HTTP error envelope. Controllers match on *DomainError and render
// {"error": {"code": ..., "message": ...}} with the carried status.
type DomainError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Code + ": " + e.Message
}

// Booking-flow errors, in the order the creation path checks them.
var (
	ErrMissingPhone = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "MISSING_PHONE",
		Message: "Phone number is required to create a booking",
	}
	ErrStationNotFound = &DomainError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "Station not found",
	}
	ErrStationUnavailable = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "UNAVAILABLE",
		Message: "Station is offline and not accepting bookings",
	}
	ErrMissingDate = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "MISSING_DATE",
		Message: "Booking date is required",
	}
	ErrInvalidDate = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_DATE",
		Message: "Booking date must be in YYYY-MM-DD format",
	}
	ErrMissingTimeSlot = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "MISSING_TIME_SLOT",
		Message: "Time slot is required",
	}
	ErrUnknownTimeSlot = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "UNKNOWN_TIME_SLOT",
		Message: "Time slot is not part of the station schedule",
	}
	ErrTimeSlotBlocked = &DomainError{
		Status:  http.StatusConflict,
		Code:    "TIME_SLOT_BLOCKED",
		Message: "Time slot is blocked by the host",
	}
	ErrTimeSlotUnavailable = &DomainError{
		Status:  http.StatusConflict,
		Code:    "TIME_SLOT_UNAVAILABLE",
		Message: "Time slot is already booked",
	}
)

// Completion-flow errors.
var (
	ErrBookingNotFound = &DomainError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "Booking not found",
	}
	ErrInvalidRating = &DomainError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_RATING",
		Message: "Rating must be an integer between 1 and 5",
	}
	ErrAlreadyCompleted = &DomainError{
		Status:  http.StatusConflict,
		Code:    "ALREADY_COMPLETED",
		Message: "Booking is already completed",
	}
	ErrBookingCancelled = &DomainError{
		Status:  http.StatusConflict,
		Code:    "CANCELLED",
		Message: "Booking was cancelled and cannot be completed",
	}
)
