package repository

import (
	"context"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
)

type CityRepository interface {
	// List returns every city ordered by name.
	List(ctx context.Context) ([]domain.City, error)
	// FindByIDs returns the subset of ids that exist, keyed by id.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.City, error)
	// Upsert inserts cities by code, renaming existing ones. Returns rows written.
	Upsert(ctx context.Context, cities []domain.City) (int, error)
}

// FlightRepository stores flights. Reads return flights with city names
// joined in. Writes must reject a second flight in an occupied slot even when
// the caller's pre-check raced with another writer.
type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, fromCityID, toCityID int64, from, to time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// FindSlotOccupant returns the flight holding slot, ignoring excludeID, or nil.
	FindSlotOccupant(ctx context.Context, slot domain.Slot, excludeID int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	// Update rewrites schedule, route, price and capacity. A capacity change
	// shifts seats_available by the same delta; the stored counter is never
	// taken from the argument.
	Update(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64, rejectBooked bool) error
	Count(ctx context.Context) (int, error)
}

// TicketRepository is the ticket ledger. Issue and Cancel own every write to a
// flight's seats_available counter.
type TicketRepository interface {
	// Issue decrements the flight's counter and inserts the ticket atomically.
	// Returns the seats left after the decrement.
	Issue(ctx context.Context, ticket *domain.Ticket) (int, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	// List returns tickets newest first.
	List(ctx context.Context) ([]domain.Ticket, error)
	// Cancel removes the ticket and returns its seat to the flight, capped at
	// seats_total. A missing flight is reported, not treated as an error.
	Cancel(ctx context.Context, id int64) (*domain.CancelledTicket, error)
	SeatDiscrepancies(ctx context.Context) ([]domain.SeatDiscrepancy, error)
}

type AdminRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) error
}

type StatsRepository interface {
	Stats(ctx context.Context, since time.Time) (domain.Stats, error)
}
