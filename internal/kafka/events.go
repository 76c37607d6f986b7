package kafka

import (
	"time"

	"github.com/flyticket/flyticket/internal/domain"
)

const (
	EventTicketIssued    = "ticket_issued"
	EventTicketCancelled = "ticket_cancelled"
)

// TicketEvent is published after a ticket ledger change has committed.
type TicketEvent struct {
	Type             string    `json:"type"`
	TicketCode       string    `json:"ticket_code"`
	FlightID         int64     `json:"flight_id"`
	FlightCode       string    `json:"flight_code,omitempty"`
	Route            string    `json:"route,omitempty"`
	DepartureTime    time.Time `json:"departure_time"`
	PassengerName    string    `json:"passenger_name"`
	PassengerSurname string    `json:"passenger_surname"`
	Email            string    `json:"email"`
	SeatNumber       string    `json:"seat_number,omitempty"`
	SeatsAvailable   int       `json:"seats_available"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NewTicketEvent describes t. flight may be nil when the flight no longer exists.
func NewTicketEvent(eventType string, t domain.Ticket, flight *domain.Flight, seatsAvailable int, at time.Time) TicketEvent {
	e := TicketEvent{
		Type:             eventType,
		TicketCode:       t.Code,
		FlightID:         t.FlightID,
		PassengerName:    t.PassengerName,
		PassengerSurname: t.PassengerSurname,
		Email:            t.PassengerEmail,
		SeatNumber:       t.SeatNumber,
		SeatsAvailable:   seatsAvailable,
		OccurredAt:       at,
	}
	if flight != nil {
		e.FlightCode = flight.Code
		e.Route = flight.FromCityLabel() + " → " + flight.ToCityLabel()
		e.DepartureTime = flight.DepartureTime
	}
	return e
}
