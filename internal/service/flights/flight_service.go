package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, input SearchInput) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateInput) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
}

// FlightCache is the read-through store for the full flight list. SetFlights
// must drop the write when the list was invalidated after version was read.
type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	FlightsVersion(ctx context.Context) (int64, error)
	SetFlights(ctx context.Context, flights []domain.Flight, version int64) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo         repository.FlightRepository
	cities       repository.CityRepository
	cache        FlightCache
	loc          *time.Location
	rejectBooked bool
	log          logrus.FieldLogger
}

type FlightServiceOption func(*FlightService)

// WithLocation sets the zone hour buckets and search days are evaluated in.
func WithLocation(loc *time.Location) FlightServiceOption {
	return func(s *FlightService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRejectBookedDelete refuses to delete flights that still have tickets.
func WithRejectBookedDelete(reject bool) FlightServiceOption {
	return func(s *FlightService) {
		s.rejectBooked = reject
	}
}

func WithLogger(log logrus.FieldLogger) FlightServiceOption {
	return func(s *FlightService) {
		s.log = log
	}
}

// NewFlightService wires the flight catalog. cache may be nil.
func NewFlightService(repo repository.FlightRepository, cities repository.CityRepository, cache FlightCache, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:   repo,
		cities: cities,
		cache:  cache,
		loc:    time.UTC,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SearchInput struct {
	FromCityID int64
	ToCityID   int64
	// Date is a calendar day formatted as 2006-01-02.
	Date string
}

type CreateInput struct {
	FlightCode     string
	FromCityID     int64
	ToCityID       int64
	DepartureTime  time.Time
	ArrivalTime    time.Time
	PriceCents     int64
	SeatsTotal     int
	SeatsAvailable *int
}

// UpdateInput carries only the fields to change.
type UpdateInput struct {
	FlightCode    *string
	FromCityID    *int64
	ToCityID      *int64
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	PriceCents    *int64
	SeatsTotal    *int
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	writeBack := false
	var version int64
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.WithError(err).Warn("flight cache read failed")
		} else if cached != nil {
			return cached, nil
		}
		// Taken before the database read so a concurrent invalidation wins.
		if version, err = s.cache.FlightsVersion(ctx); err != nil {
			s.log.WithError(err).Warn("flight cache version read failed")
		} else {
			writeBack = true
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	if writeBack {
		if err := s.cache.SetFlights(ctx, flights, version); err != nil {
			s.log.WithError(err).Warn("flight cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) Search(ctx context.Context, input SearchInput) ([]domain.Flight, error) {
	switch {
	case input.FromCityID <= 0:
		return nil, domain.NewInvalidInput("from", "is required")
	case input.ToCityID <= 0:
		return nil, domain.NewInvalidInput("to", "is required")
	case input.FromCityID == input.ToCityID:
		return nil, domain.NewInvalidInput("to", "must differ from from")
	case strings.TrimSpace(input.Date) == "":
		return nil, domain.NewInvalidInput("date", "is required")
	}

	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.Date), s.loc)
	if err != nil {
		return nil, domain.NewInvalidInput("date", "must be formatted as YYYY-MM-DD")
	}
	from, to := domain.DayRange(day, s.loc)

	flights, err := s.repo.Search(ctx, input.FromCityID, input.ToCityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, input CreateInput) (*domain.Flight, error) {
	flight := &domain.Flight{
		Code:           normalizeCode(input.FlightCode),
		FromCityID:     input.FromCityID,
		ToCityID:       input.ToCityID,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		PriceCents:     input.PriceCents,
		SeatsTotal:     input.SeatsTotal,
		SeatsAvailable: input.SeatsTotal,
	}
	if input.SeatsAvailable != nil {
		flight.SeatsAvailable = *input.SeatsAvailable
	}

	if err := s.validate(ctx, flight); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"flight_id": flight.ID, "flight_code": flight.Code}).Info("flight created")
	return flight, nil
}

func (s *FlightService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.Flight, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	if input.FlightCode != nil {
		next.Code = normalizeCode(*input.FlightCode)
	}
	if input.FromCityID != nil {
		next.FromCityID = *input.FromCityID
	}
	if input.ToCityID != nil {
		next.ToCityID = *input.ToCityID
	}
	if input.DepartureTime != nil {
		next.DepartureTime = *input.DepartureTime
	}
	if input.ArrivalTime != nil {
		next.ArrivalTime = *input.ArrivalTime
	}
	if input.PriceCents != nil {
		next.PriceCents = *input.PriceCents
	}
	if input.SeatsTotal != nil {
		booked := current.SeatsOccupied()
		if *input.SeatsTotal < booked {
			return nil, domain.NewInvalidInput("seats_total", fmt.Sprintf("must be at least %d, the number of booked seats", booked))
		}
		next.SeatsTotal = *input.SeatsTotal
		next.SeatsAvailable = next.SeatsTotal - booked
	}

	if err := s.validate(ctx, &next); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.WithFields(logrus.Fields{"flight_id": next.ID, "flight_code": next.Code}).Info("flight updated")
	return &next, nil
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id, s.rejectBooked); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.WithField("flight_id", id).Info("flight deleted")
	return nil
}

// validate runs the record checks, then the city and schedule checks that
// need storage. The repository re-enforces the latter two on write.
func (s *FlightService) validate(ctx context.Context, flight *domain.Flight) error {
	if err := flight.Validate(); err != nil {
		return err
	}
	if err := s.checkCities(ctx, flight); err != nil {
		return err
	}
	return s.checkSchedule(ctx, *flight)
}

func (s *FlightService) checkCities(ctx context.Context, flight *domain.Flight) error {
	found, err := s.cities.FindByIDs(ctx, []int64{flight.FromCityID, flight.ToCityID})
	if err != nil {
		return fmt.Errorf("load cities: %w", err)
	}
	from, ok := found[flight.FromCityID]
	if !ok {
		return &domain.InvalidCityReferenceError{Side: domain.SideDeparture, CityID: flight.FromCityID}
	}
	to, ok := found[flight.ToCityID]
	if !ok {
		return &domain.InvalidCityReferenceError{Side: domain.SideArrival, CityID: flight.ToCityID}
	}
	flight.FromCityName, flight.ToCityName = from.Name, to.Name
	return nil
}

func (s *FlightService) checkSchedule(ctx context.Context, flight domain.Flight) error {
	for _, slot := range domain.SlotsOf(flight, s.loc) {
		occupant, err := s.repo.FindSlotOccupant(ctx, slot, flight.ID)
		if err != nil {
			return fmt.Errorf("check %s slot: %w", slot.Side, err)
		}
		if occupant != nil {
			return &domain.ScheduleConflictError{
				Side:            slot.Side,
				CityID:          slot.CityID,
				Bucket:          slot.Bucket.Start,
				ConflictingCode: occupant.Code,
			}
		}
	}
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.WithError(err).Warn("flight cache invalidation failed")
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ FlightUseCase = (*FlightService)(nil)
