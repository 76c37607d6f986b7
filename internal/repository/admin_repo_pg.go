package repository

import (
	"context"
	"errors"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAdminRepository struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) AdminRepository {
	return &PGAdminRepository{db: db}
}

func (r *PGAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	err := r.db.QueryRow(ctx, `INSERT INTO admins (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		admin.Username, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt)
	if _, ok := constraintError(err, pgUniqueViolation); ok {
		return domain.ErrAdminExists
	}
	return err
}

type PGStatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) StatsRepository {
	return &PGStatsRepository{db: db}
}

// Stats counts flights and tickets and sums the current price of every booked
// flight. Tickets whose flight was deleted count as bookings with no revenue.
func (r *PGStatsRepository) Stats(ctx context.Context, since time.Time) (domain.Stats, error) {
	var s domain.Stats
	err := r.db.QueryRow(ctx, `SELECT
			(SELECT count(*) FROM flights),
			(SELECT count(*) FROM tickets),
			(SELECT count(*) FROM tickets WHERE created_at >= $1),
			(SELECT COALESCE(sum(f.price_cents), 0)::bigint FROM tickets t JOIN flights f ON f.id = t.flight_id)`, since).
		Scan(&s.TotalFlights, &s.TotalBookings, &s.RecentBookings, &s.TotalRevenueCents)
	return s, err
}

var (
	_ AdminRepository = (*PGAdminRepository)(nil)
	_ StatsRepository = (*PGStatsRepository)(nil)
)
