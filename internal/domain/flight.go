package domain

import (
	"fmt"
	"time"
)

type Flight struct {
	ID             int64
	Code           string
	FromCityID     int64
	ToCityID       int64
	FromCityName   string
	ToCityName     string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	PriceCents     int64
	SeatsTotal     int
	SeatsAvailable int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DurationMinutes is the scheduled block time rounded to the nearest minute.
func (f Flight) DurationMinutes() int {
	return int(f.ArrivalTime.Sub(f.DepartureTime).Round(time.Minute) / time.Minute)
}

func (f Flight) SeatsOccupied() int {
	return f.SeatsTotal - f.SeatsAvailable
}

// OccupancyRate returns the booked share of the cabin as a whole percentage.
func (f Flight) OccupancyRate() int {
	if f.SeatsTotal <= 0 {
		return 0
	}
	return int(float64(f.SeatsOccupied())/float64(f.SeatsTotal)*100 + 0.5)
}

// FromCityLabel falls back to a placeholder when the city row could not be joined.
func (f Flight) FromCityLabel() string {
	return cityLabel(f.FromCityName, f.FromCityID)
}

func (f Flight) ToCityLabel() string {
	return cityLabel(f.ToCityName, f.ToCityID)
}

func cityLabel(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("Unknown City (%d)", id)
}

// Validate checks the record-level invariants of a flight. Cross-flight rules
// (schedule slots, city existence) are enforced by the flight service and storage.
func (f Flight) Validate() error {
	switch {
	case f.Code == "":
		return NewInvalidInput("flight_code", "is required")
	case f.FromCityID <= 0:
		return NewInvalidInput("from_city_id", "is required")
	case f.ToCityID <= 0:
		return NewInvalidInput("to_city_id", "is required")
	case f.FromCityID == f.ToCityID:
		return NewInvalidInput("to_city_id", "must differ from from_city_id")
	case f.DepartureTime.IsZero():
		return NewInvalidInput("departure_time", "is required")
	case f.ArrivalTime.IsZero():
		return NewInvalidInput("arrival_time", "is required")
	case !f.DepartureTime.Before(f.ArrivalTime):
		return NewInvalidInput("arrival_time", "must be after departure_time")
	case f.PriceCents < 0:
		return NewInvalidInput("price_cents", "must not be negative")
	case f.SeatsTotal < 1:
		return NewInvalidInput("seats_total", "must be at least 1")
	case f.SeatsAvailable < 0 || f.SeatsAvailable > f.SeatsTotal:
		return NewInvalidInput("seats_available", "must be between 0 and seats_total")
	}
	return nil
}
