package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidCityReference = errors.New("city not found")
	ErrScheduleConflict     = errors.New("schedule conflict with existing flight")
	ErrDuplicateFlightCode  = errors.New("flight code already in use")
	ErrFlightNotFound       = errors.New("flight not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrNoSeatsAvailable     = errors.New("no seats available")
	ErrFlightHasTickets     = errors.New("flight has booked tickets")
	ErrDuplicateTicketCode  = errors.New("ticket code already in use")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAdminExists        = errors.New("admin already exists")
	ErrAdminNotFound      = errors.New("admin not found")
)

// InvalidInputError names the request field that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func NewInvalidInput(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidCityReferenceError reports which end of a flight points at a missing city.
type InvalidCityReferenceError struct {
	Side   ScheduleSide
	CityID int64
}

func (e *InvalidCityReferenceError) Error() string {
	field := "from_city"
	if e.Side == SideArrival {
		field = "to_city"
	}
	return fmt.Sprintf("city not found: %s %d", field, e.CityID)
}

func (e *InvalidCityReferenceError) Is(target error) bool {
	return target == ErrInvalidCityReference
}

// ScheduleConflictError reports the slot that is already taken. ConflictingCode
// is empty when the collision was detected by the storage constraint rather
// than by the pre-check.
type ScheduleConflictError struct {
	Side            ScheduleSide
	CityID          int64
	Bucket          time.Time
	ConflictingCode string
}

func (e *ScheduleConflictError) Error() string {
	verb := "departs from"
	if e.Side == SideArrival {
		verb = "arrives at"
	}
	msg := fmt.Sprintf("schedule conflict with existing flight: another flight %s city %d", verb, e.CityID)
	if !e.Bucket.IsZero() {
		msg += " in the hour starting " + e.Bucket.Format("2006-01-02 15:04 MST")
	}
	if e.ConflictingCode != "" {
		msg += " (" + e.ConflictingCode + ")"
	}
	return msg
}

func (e *ScheduleConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}
