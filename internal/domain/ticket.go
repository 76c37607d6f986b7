package domain

import "time"

// Ticket is a passenger reservation. FlightID is a weak reference: the flight
// may have been deleted since, in which case Flight stays nil on reads.
type Ticket struct {
	ID               int64
	Code             string
	PassengerName    string
	PassengerSurname string
	PassengerEmail   string
	FlightID         int64
	SeatNumber       string
	CreatedAt        time.Time

	Flight *Flight
}

// CancelledTicket is the outcome of a cancellation.
type CancelledTicket struct {
	Ticket         Ticket
	FlightFound    bool
	SeatsAvailable int
	// Capped is set when the flight was already at full availability and the
	// increment was dropped.
	Capped bool
}

// SeatDiscrepancy reports a flight whose counter disagrees with its ledger.
type SeatDiscrepancy struct {
	FlightID       int64
	FlightCode     string
	SeatsTotal     int
	SeatsAvailable int
	TicketCount    int
}

func (d SeatDiscrepancy) Expected() int {
	return d.SeatsTotal - d.TicketCount
}
