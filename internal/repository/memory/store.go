// Package memory keeps every repository in process memory behind one mutex.
// It backs the memory database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/repository"
)

type Store struct {
	mu  sync.Mutex
	loc *time.Location
	now func() time.Time

	cities  map[int64]domain.City
	flights map[int64]domain.Flight
	tickets map[int64]domain.Ticket
	admins  map[string]domain.Admin

	nextCity, nextFlight, nextTicket, nextAdmin int64
}

// NewStore returns an empty store that buckets schedule slots on the wall
// clock of loc.
func NewStore(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		loc:     loc,
		now:     time.Now,
		cities:  make(map[int64]domain.City),
		flights: make(map[int64]domain.Flight),
		tickets: make(map[int64]domain.Ticket),
		admins:  make(map[string]domain.Admin),
	}
}

func (s *Store) Cities() repository.CityRepository { return (*cityRepo)(s) }
func (s *Store) Flights() repository.FlightRepository { return (*flightRepo)(s) }
func (s *Store) Tickets() repository.TicketRepository { return (*ticketRepo)(s) }
func (s *Store) Admins() repository.AdminRepository { return (*adminRepo)(s) }
func (s *Store) Stats() repository.StatsRepository { return (*statsRepo)(s) }

// withNames fills the joined city names the way the SQL reads do.
func (s *Store) withNames(f domain.Flight) domain.Flight {
	f.FromCityName = s.cities[f.FromCityID].Name
	f.ToCityName = s.cities[f.ToCityID].Name
	return f
}

func sortFlights(flights []domain.Flight) {
	sort.Slice(flights, func(i, j int) bool {
		if !flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].DepartureTime.Before(flights[j].DepartureTime)
		}
		return flights[i].ID < flights[j].ID
	})
}

type cityRepo Store

func (r *cityRepo) List(_ context.Context) ([]domain.City, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	cities := make([]domain.City, 0, len(s.cities))
	for _, c := range s.cities {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Name != cities[j].Name {
			return cities[i].Name < cities[j].Name
		}
		return cities[i].ID < cities[j].ID
	})
	return cities, nil
}

func (r *cityRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]domain.City, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[int64]domain.City, len(ids))
	for _, id := range ids {
		if c, ok := s.cities[id]; ok {
			found[id] = c
		}
	}
	return found, nil
}

func (r *cityRepo) Upsert(_ context.Context, cities []domain.City) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	byCode := make(map[string]int64, len(s.cities))
	for id, c := range s.cities {
		byCode[c.Code] = id
	}
	for _, c := range cities {
		if id, ok := byCode[c.Code]; ok {
			existing := s.cities[id]
			existing.Name = c.Name
			s.cities[id] = existing
			continue
		}
		s.nextCity++
		c.ID = s.nextCity
		c.CreatedAt = s.now()
		s.cities[c.ID] = c
		byCode[c.Code] = c.ID
	}
	return len(cities), nil
}

type flightRepo Store

func (r *flightRepo) List(_ context.Context) ([]domain.Flight, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	flights := make([]domain.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		flights = append(flights, s.withNames(f))
	}
	sortFlights(flights)
	return flights, nil
}

func (r *flightRepo) Search(_ context.Context, fromCityID, toCityID int64, from, to time.Time) ([]domain.Flight, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	flights := make([]domain.Flight, 0)
	for _, f := range s.flights {
		if f.FromCityID != fromCityID || f.ToCityID != toCityID {
			continue
		}
		if f.DepartureTime.Before(from) || !f.DepartureTime.Before(to) {
			continue
		}
		flights = append(flights, s.withNames(f))
	}
	sortFlights(flights)
	return flights, nil
}

func (r *flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	f = s.withNames(f)
	return &f, nil
}

func (r *flightRepo) FindSlotOccupant(_ context.Context, slot domain.Slot, excludeID int64) (*domain.Flight, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.occupant(slot, excludeID); f != nil {
		named := s.withNames(*f)
		return &named, nil
	}
	return nil, nil
}

// occupant scans for the lowest-id flight holding slot. Caller holds mu.
func (s *Store) occupant(slot domain.Slot, excludeID int64) *domain.Flight {
	var hit *domain.Flight
	for id, f := range s.flights {
		if id == excludeID {
			continue
		}
		cityID, at := f.FromCityID, f.DepartureTime
		if slot.Side == domain.SideArrival {
			cityID, at = f.ToCityID, f.ArrivalTime
		}
		if cityID != slot.CityID || !slot.Bucket.Contains(at) {
			continue
		}
		if hit == nil || f.ID < hit.ID {
			f := f
			hit = &f
		}
	}
	return hit
}

// checkWrite enforces what the SQL schema enforces with constraints. Caller holds mu.
func (s *Store) checkWrite(f domain.Flight) error {
	if _, ok := s.cities[f.FromCityID]; !ok {
		return &domain.InvalidCityReferenceError{Side: domain.SideDeparture, CityID: f.FromCityID}
	}
	if _, ok := s.cities[f.ToCityID]; !ok {
		return &domain.InvalidCityReferenceError{Side: domain.SideArrival, CityID: f.ToCityID}
	}
	for id, other := range s.flights {
		if id != f.ID && other.Code == f.Code {
			return domain.ErrDuplicateFlightCode
		}
	}
	for _, slot := range domain.SlotsOf(f, s.loc) {
		if hit := s.occupant(slot, f.ID); hit != nil {
			return &domain.ScheduleConflictError{Side: slot.Side, CityID: slot.CityID, Bucket: slot.Bucket.Start}
		}
	}
	return nil
}

func (r *flightRepo) Create(_ context.Context, flight *domain.Flight) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := flight.Validate(); err != nil {
		return err
	}
	if err := s.checkWrite(*flight); err != nil {
		return err
	}

	s.nextFlight++
	flight.ID = s.nextFlight
	flight.CreatedAt = s.now()
	flight.UpdatedAt = flight.CreatedAt
	stored := *flight
	stored.FromCityName, stored.ToCityName = "", ""
	s.flights[stored.ID] = stored
	return nil
}

func (r *flightRepo) Update(_ context.Context, flight *domain.Flight) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.flights[flight.ID]
	if !ok {
		return domain.ErrFlightNotFound
	}
	if flight.SeatsTotal < current.SeatsOccupied() {
		return domain.NewInvalidInput("seats_total", "is below the number of booked seats")
	}

	next := *flight
	next.SeatsAvailable = current.SeatsAvailable + (flight.SeatsTotal - current.SeatsTotal)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.checkWrite(next); err != nil {
		return err
	}

	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = s.now()
	next.FromCityName, next.ToCityName = "", ""
	s.flights[next.ID] = next

	flight.SeatsAvailable = next.SeatsAvailable
	flight.CreatedAt = next.CreatedAt
	flight.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *flightRepo) Delete(_ context.Context, id int64, rejectBooked bool) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.flights[id]; !ok {
		return domain.ErrFlightNotFound
	}
	if rejectBooked {
		for _, t := range s.tickets {
			if t.FlightID == id {
				return domain.ErrFlightHasTickets
			}
		}
	}
	delete(s.flights, id)
	return nil
}

func (r *flightRepo) Count(_ context.Context) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flights), nil
}

type ticketRepo Store

func (r *ticketRepo) Issue(_ context.Context, ticket *domain.Ticket) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[ticket.FlightID]
	if !ok {
		return 0, domain.ErrFlightNotFound
	}
	if f.SeatsAvailable <= 0 {
		return 0, domain.ErrNoSeatsAvailable
	}
	for _, t := range s.tickets {
		if t.Code == ticket.Code {
			return 0, domain.ErrDuplicateTicketCode
		}
	}

	f.SeatsAvailable--
	f.UpdatedAt = s.now()
	s.flights[f.ID] = f

	s.nextTicket++
	ticket.ID = s.nextTicket
	ticket.CreatedAt = f.UpdatedAt
	stored := *ticket
	stored.Flight = nil
	s.tickets[stored.ID] = stored
	return f.SeatsAvailable, nil
}

// attach joins the ticket's flight when it still exists. Caller holds mu.
func (s *Store) attach(t domain.Ticket) domain.Ticket {
	if f, ok := s.flights[t.FlightID]; ok {
		f = s.withNames(f)
		t.Flight = &f
	}
	return t
}

func (r *ticketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.Code == code {
			t = s.attach(t)
			return &t, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (r *ticketRepo) List(_ context.Context) ([]domain.Ticket, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		tickets = append(tickets, s.attach(t))
	}
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})
	return tickets, nil
}

func (r *ticketRepo) Cancel(_ context.Context, id int64) (*domain.CancelledTicket, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	delete(s.tickets, id)

	res := &domain.CancelledTicket{Ticket: t}
	f, ok := s.flights[t.FlightID]
	if !ok {
		return res, nil
	}
	res.FlightFound = true
	if f.SeatsAvailable >= f.SeatsTotal {
		res.Capped = true
	} else {
		f.SeatsAvailable++
		f.UpdatedAt = s.now()
		s.flights[f.ID] = f
	}
	res.SeatsAvailable = f.SeatsAvailable
	return res, nil
}

func (r *ticketRepo) SeatDiscrepancies(_ context.Context) ([]domain.SeatDiscrepancy, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[int64]int, len(s.flights))
	for _, t := range s.tickets {
		counts[t.FlightID]++
	}

	var out []domain.SeatDiscrepancy
	for id, f := range s.flights {
		if f.SeatsOccupied() == counts[id] {
			continue
		}
		out = append(out, domain.SeatDiscrepancy{
			FlightID:       id,
			FlightCode:     f.Code,
			SeatsTotal:     f.SeatsTotal,
			SeatsAvailable: f.SeatsAvailable,
			TicketCount:    counts[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FlightID < out[j].FlightID })
	return out, nil
}

type adminRepo Store

func (r *adminRepo) GetByUsername(_ context.Context, username string) (*domain.Admin, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.admins[username]
	if !ok {
		return nil, domain.ErrAdminNotFound
	}
	return &a, nil
}

func (r *adminRepo) Create(_ context.Context, admin *domain.Admin) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[admin.Username]; ok {
		return domain.ErrAdminExists
	}
	s.nextAdmin++
	admin.ID = s.nextAdmin
	admin.CreatedAt = s.now()
	s.admins[admin.Username] = *admin
	return nil
}

type statsRepo Store

func (r *statsRepo) Stats(_ context.Context, since time.Time) (domain.Stats, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.Stats{TotalFlights: len(s.flights), TotalBookings: len(s.tickets)}
	for _, t := range s.tickets {
		if !t.CreatedAt.Before(since) {
			stats.RecentBookings++
		}
		if f, ok := s.flights[t.FlightID]; ok {
			stats.TotalRevenueCents += f.PriceCents
		}
	}
	return stats, nil
}

var (
	_ repository.CityRepository   = (*cityRepo)(nil)
	_ repository.FlightRepository = (*flightRepo)(nil)
	_ repository.TicketRepository = (*ticketRepo)(nil)
	_ repository.AdminRepository  = (*adminRepo)(nil)
	_ repository.StatsRepository  = (*statsRepo)(nil)
)
