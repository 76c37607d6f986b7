package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newSeeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore(time.UTC)
	_, err := s.Cities().Upsert(context.Background(), []domain.City{
		{Code: "IST", Name: "İstanbul"},
		{Code: "ANK", Name: "Ankara"},
		{Code: "IZM", Name: "İzmir"},
	})
	require.NoError(t, err)
	return s
}

func flight(code string, from, to int64, dep time.Time, seats int) *domain.Flight {
	return &domain.Flight{Code: code, FromCityID: from, ToCityID: to, DepartureTime: dep, ArrivalTime: dep.Add(time.Hour),
		PriceCents: 10000, SeatsTotal: seats, SeatsAvailable: seats}
}

func TestCities_UpsertRenamesByCode(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	n, err := s.Cities().Upsert(ctx, []domain.City{{Code: "ANK", Name: "Ankara Merkez"}, {Code: "ADN", Name: "Adana"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := s.Cities().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Adana", list[0].Name)
	assert.Equal(t, "Ankara Merkez", list[1].Name)
	assert.Equal(t, int64(2), list[1].ID)

	found, err := s.Cities().FindByIDs(ctx, []int64{1, 99})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "IST", found[1].Code)
}

func TestFlights_SlotRules(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	repo := s.Flights()

	require.NoError(t, repo.Create(ctx, flight("TK1", 1, 2, base, 3)))

	// Same origin within the hour.
	err := repo.Create(ctx, flight("TK2", 1, 3, base.Add(59*time.Minute), 3))
	var conflict *domain.ScheduleConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.SideDeparture, conflict.Side)

	// Different origin, same destination hour.
	err = repo.Create(ctx, flight("TK3", 3, 2, base.Add(10*time.Minute), 3))
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.SideArrival, conflict.Side)

	// Adjacent hour is a different bucket.
	require.NoError(t, repo.Create(ctx, flight("TK4", 1, 3, base.Add(time.Hour), 3)))

	assert.ErrorIs(t, repo.Create(ctx, flight("TK4", 2, 3, base.Add(5*time.Hour), 3)), domain.ErrDuplicateFlightCode)
	assert.ErrorIs(t, repo.Create(ctx, flight("TK5", 1, 42, base.Add(8*time.Hour), 3)), domain.ErrInvalidCityReference)

	occupant, err := repo.FindSlotOccupant(ctx, domain.Slot{Side: domain.SideDeparture, CityID: 1, Bucket: domain.BucketOf(base, time.UTC)}, 0)
	require.NoError(t, err)
	require.NotNil(t, occupant)
	assert.Equal(t, "TK1", occupant.Code)
	assert.Equal(t, "İstanbul", occupant.FromCityName)

	// A flight does not conflict with itself on update.
	tk1, err := repo.GetByID(ctx, occupant.ID)
	require.NoError(t, err)
	tk1.DepartureTime = base.Add(20 * time.Minute)
	require.NoError(t, repo.Update(ctx, tk1))
}

func TestFlights_SlotRulesAcrossDSTFallBack(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	s := NewStore(berlin)
	ctx := context.Background()
	_, err = s.Cities().Upsert(ctx, []domain.City{{Code: "BER", Name: "Berlin"}, {Code: "MUC", Name: "München"}, {Code: "HAM", Name: "Hamburg"}})
	require.NoError(t, err)
	repo := s.Flights()

	// 02:10 and 02:30 CEST share the first pass of the repeated hour.
	first := time.Date(2025, 10, 26, 0, 10, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, flight("LH1", 1, 2, first, 3)))

	var conflict *domain.ScheduleConflictError
	err = repo.Create(ctx, flight("LH2", 1, 3, first.Add(20*time.Minute), 3))
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.SideDeparture, conflict.Side)

	// 02:30 CET is the second pass, a separate bucket.
	require.NoError(t, repo.Create(ctx, flight("LH3", 1, 3, first.Add(80*time.Minute), 3)))
}

func TestFlights_SearchAndOrdering(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	repo := s.Flights()

	require.NoError(t, repo.Create(ctx, flight("LATE", 1, 2, base.Add(8*time.Hour), 3)))
	require.NoError(t, repo.Create(ctx, flight("EARLY", 1, 2, base, 3)))
	require.NoError(t, repo.Create(ctx, flight("NEXTDAY", 1, 2, base.Add(24*time.Hour), 3)))
	require.NoError(t, repo.Create(ctx, flight("OTHER", 1, 3, base.Add(2*time.Hour), 3)))

	from, to := domain.DayRange(base, time.UTC)
	found, err := repo.Search(ctx, 1, 2, from, to)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "EARLY", found[0].Code)
	assert.Equal(t, "LATE", found[1].Code)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "NEXTDAY", all[3].Code)
}

func TestTickets_ConcurrentIssueNeverOversells(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	f := flight("TK1", 1, 2, base, 3)
	require.NoError(t, s.Flights().Create(ctx, f))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, full int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Tickets().Issue(ctx, &domain.Ticket{Code: fmt.Sprintf("TK-%d", i), FlightID: f.ID})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrNoSeatsAvailable) {
				full++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 2, full)

	got, err := s.Flights().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SeatsAvailable)

	discrepancies, err := s.Tickets().SeatDiscrepancies(ctx)
	require.NoError(t, err)
	assert.Empty(t, discrepancies)
}

func TestTickets_CancelAndCapacity(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	f := flight("TK1", 1, 2, base, 2)
	require.NoError(t, s.Flights().Create(ctx, f))

	left, err := s.Tickets().Issue(ctx, &domain.Ticket{Code: "TK-A", FlightID: f.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, left)
	_, err = s.Tickets().Issue(ctx, &domain.Ticket{Code: "TK-A", FlightID: f.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateTicketCode)
	_, err = s.Tickets().Issue(ctx, &domain.Ticket{Code: "TK-B", FlightID: 404})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	got, err := s.Tickets().GetByCode(ctx, "TK-A")
	require.NoError(t, err)
	require.NotNil(t, got.Flight)
	assert.Equal(t, "Ankara", got.Flight.ToCityName)

	// Shrinking below the booked count is refused; shrinking to it is fine.
	upd := *f
	upd.SeatsTotal = 0
	assert.ErrorIs(t, s.Flights().Update(ctx, &upd), domain.ErrInvalidInput)
	upd.SeatsTotal = 1
	require.NoError(t, s.Flights().Update(ctx, &upd))
	assert.Equal(t, 0, upd.SeatsAvailable)

	assert.ErrorIs(t, s.Flights().Delete(ctx, f.ID, true), domain.ErrFlightHasTickets)

	res, err := s.Tickets().Cancel(ctx, got.ID)
	require.NoError(t, err)
	assert.True(t, res.FlightFound)
	assert.False(t, res.Capped)
	assert.Equal(t, 1, res.SeatsAvailable)

	_, err = s.Tickets().Cancel(ctx, got.ID)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestTickets_CancelCapsAndToleratesMissingFlight(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()
	f := flight("TK1", 1, 2, base, 2)
	require.NoError(t, s.Flights().Create(ctx, f))

	_, err := s.Tickets().Issue(ctx, &domain.Ticket{Code: "TK-A", FlightID: f.ID})
	require.NoError(t, err)
	_, err = s.Tickets().Issue(ctx, &domain.Ticket{Code: "TK-B", FlightID: f.ID})
	require.NoError(t, err)

	// Force the counter out of step with the ledger.
	s.mu.Lock()
	stored := s.flights[f.ID]
	stored.SeatsAvailable = stored.SeatsTotal
	s.flights[f.ID] = stored
	s.mu.Unlock()

	discrepancies, err := s.Tickets().SeatDiscrepancies(ctx)
	require.NoError(t, err)
	require.Len(t, discrepancies, 1)
	assert.Equal(t, 0, discrepancies[0].Expected())

	res, err := s.Tickets().Cancel(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Capped)
	assert.Equal(t, 2, res.SeatsAvailable)

	require.NoError(t, s.Flights().Delete(ctx, f.ID, false))
	res, err = s.Tickets().Cancel(ctx, 2)
	require.NoError(t, err)
	assert.False(t, res.FlightFound)
}

func TestAdminsAndStats(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	require.NoError(t, s.Admins().Create(ctx, &domain.Admin{Username: "root", PasswordHash: "h"}))
	assert.ErrorIs(t, s.Admins().Create(ctx, &domain.Admin{Username: "root"}), domain.ErrAdminExists)
	_, err := s.Admins().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrAdminNotFound)

	f := flight("TK1", 1, 2, base, 5)
	require.NoError(t, s.Flights().Create(ctx, f))
	for _, code := range []string{"TK-A", "TK-B"} {
		_, err := s.Tickets().Issue(ctx, &domain.Ticket{Code: code, FlightID: f.ID})
		require.NoError(t, err)
	}

	stats, err := s.Stats().Stats(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalFlights: 1, TotalBookings: 2, RecentBookings: 2, TotalRevenueCents: 20000}, stats)

	stats, err = s.Stats().Stats(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RecentBookings)
}
