package api

import (
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/samber/lo"
)

type cityResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func toCityResponse(c domain.City, _ int) cityResponse {
	return cityResponse{ID: c.ID, Code: c.Code, Name: c.Name}
}

type flightResponse struct {
	ID              int64     `json:"id"`
	FlightCode      string    `json:"flight_code"`
	FromCityID      int64     `json:"from_city_id"`
	ToCityID        int64     `json:"to_city_id"`
	FromCity        string    `json:"from_city"`
	ToCity          string    `json:"to_city"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	SeatsTotal      int       `json:"seats_total"`
	SeatsAvailable  int       `json:"seats_available"`
	SeatsOccupied   int       `json:"seats_occupied"`
	OccupancyRate   int       `json:"occupancy_rate"`
}

func toFlightResponse(f domain.Flight, _ int) flightResponse {
	return flightResponse{
		ID:              f.ID,
		FlightCode:      f.Code,
		FromCityID:      f.FromCityID,
		ToCityID:        f.ToCityID,
		FromCity:        f.FromCityLabel(),
		ToCity:          f.ToCityLabel(),
		DepartureTime:   f.DepartureTime,
		ArrivalTime:     f.ArrivalTime,
		DurationMinutes: f.DurationMinutes(),
		PriceCents:      f.PriceCents,
		SeatsTotal:      f.SeatsTotal,
		SeatsAvailable:  f.SeatsAvailable,
		SeatsOccupied:   f.SeatsOccupied(),
		OccupancyRate:   f.OccupancyRate(),
	}
}

type ticketResponse struct {
	ID               int64           `json:"id"`
	TicketCode       string          `json:"ticket_code"`
	PassengerName    string          `json:"passenger_name"`
	PassengerSurname string          `json:"passenger_surname"`
	PassengerEmail   string          `json:"passenger_email"`
	FlightID         int64           `json:"flight_id"`
	SeatNumber       string          `json:"seat_number,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Flight           *flightResponse `json:"flight,omitempty"`
}

func toTicketResponse(t domain.Ticket, _ int) ticketResponse {
	resp := ticketResponse{
		ID:               t.ID,
		TicketCode:       t.Code,
		PassengerName:    t.PassengerName,
		PassengerSurname: t.PassengerSurname,
		PassengerEmail:   t.PassengerEmail,
		FlightID:         t.FlightID,
		SeatNumber:       t.SeatNumber,
		CreatedAt:        t.CreatedAt,
	}
	if t.Flight != nil {
		f := toFlightResponse(*t.Flight, 0)
		resp.Flight = &f
	}
	return resp
}

type cancelResponse struct {
	Ticket         ticketResponse `json:"ticket"`
	FlightFound    bool           `json:"flight_found"`
	SeatsAvailable int            `json:"seats_available"`
}

type statsResponse struct {
	TotalFlights      int   `json:"total_flights"`
	TotalBookings     int   `json:"total_bookings"`
	RecentBookings    int   `json:"recent_bookings"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
}

type adminResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toCityResponses(cities []domain.City) []cityResponse {
	return lo.Map(cities, toCityResponse)
}

func toFlightResponses(flights []domain.Flight) []flightResponse {
	return lo.Map(flights, toFlightResponse)
}

func toTicketResponses(tickets []domain.Ticket) []ticketResponse {
	return lo.Map(tickets, toTicketResponse)
}
