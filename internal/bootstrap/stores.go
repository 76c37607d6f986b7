package bootstrap

import (
	"context"
	"fmt"

	"github.com/flyticket/flyticket/config"
	"github.com/flyticket/flyticket/internal/repository"
	"github.com/flyticket/flyticket/internal/repository/memory"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Stores is the set of repositories for the configured database driver.
type Stores struct {
	Cities  repository.CityRepository
	Flights repository.FlightRepository
	Tickets repository.TicketRepository
	Admins  repository.AdminRepository
	Stats   repository.StatsRepository

	// Pool is nil for the memory driver.
	Pool *pgxpool.Pool
}

// OpenStores connects to PostgreSQL and applies the schema, or builds an
// in-process store when the memory driver is selected.
func OpenStores(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Stores, error) {
	loc := cfg.Schedule.Location()

	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore(loc)
		return &Stores{
			Cities:  store.Cities(),
			Flights: store.Flights(),
			Tickets: store.Tickets(),
			Admins:  store.Admins(),
			Stats:   store.Stats(),
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Stores{
		Cities:  repository.NewCityRepository(pool),
		Flights: repository.NewFlightRepository(pool, loc),
		Tickets: repository.NewTicketRepository(pool),
		Admins:  repository.NewAdminRepository(pool),
		Stats:   repository.NewStatsRepository(pool),
		Pool:    pool,
	}, nil
}

func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
