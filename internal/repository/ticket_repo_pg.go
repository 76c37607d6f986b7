package repository

import (
	"context"
	"errors"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ticketSelect = `SELECT t.id, t.code, t.passenger_name, t.passenger_surname, t.passenger_email, t.flight_id, t.seat_number, t.created_at,
		f.id, f.code, f.from_city_id, f.to_city_id, fc.name, tc.name,
		f.departure_time, f.arrival_time, f.price_cents, f.seats_total, f.seats_available, f.created_at, f.updated_at
	FROM tickets t
	LEFT JOIN flights f ON f.id = t.flight_id
	LEFT JOIN cities fc ON fc.id = f.from_city_id
	LEFT JOIN cities tc ON tc.id = f.to_city_id`

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		t                  domain.Ticket
		flightID           *int64
		code               *string
		fromID, toID       *int64
		fromName, toName   *string
		dep, arr           *time.Time
		price              *int64
		total, avail       *int
		fCreated, fUpdated *time.Time
	)
	if err := row.Scan(&t.ID, &t.Code, &t.PassengerName, &t.PassengerSurname, &t.PassengerEmail, &t.FlightID, &t.SeatNumber, &t.CreatedAt,
		&flightID, &code, &fromID, &toID, &fromName, &toName, &dep, &arr, &price, &total, &avail, &fCreated, &fUpdated); err != nil {
		return nil, err
	}
	if flightID != nil {
		t.Flight = &domain.Flight{
			ID:             *flightID,
			Code:           *code,
			FromCityID:     *fromID,
			ToCityID:       *toID,
			FromCityName:   deref(fromName),
			ToCityName:     deref(toName),
			DepartureTime:  *dep,
			ArrivalTime:    *arr,
			PriceCents:     *price,
			SeatsTotal:     *total,
			SeatsAvailable: *avail,
			CreatedAt:      *fCreated,
			UpdatedAt:      *fUpdated,
		}
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *PGTicketRepository) Issue(ctx context.Context, ticket *domain.Ticket) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Conditional decrement: concurrent issuers serialize on the row lock and
	// re-check seats_available > 0 after the winner commits.
	var remaining int
	err = tx.QueryRow(ctx, `UPDATE flights SET seats_available = seats_available - 1, updated_at = now()
		WHERE id = $1 AND seats_available > 0
		RETURNING seats_available`, ticket.FlightID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id = $1)`, ticket.FlightID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, domain.ErrFlightNotFound
		}
		return 0, domain.ErrNoSeatsAvailable
	}
	if err != nil {
		return 0, err
	}

	err = tx.QueryRow(ctx, `INSERT INTO tickets (code, passenger_name, passenger_surname, passenger_email, flight_id, seat_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		ticket.Code, ticket.PassengerName, ticket.PassengerSurname, ticket.PassengerEmail, ticket.FlightID, ticket.SeatNumber).
		Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		if pgErr, ok := constraintError(err, pgUniqueViolation); ok && pgErr.ConstraintName == "tickets_code_key" {
			return 0, domain.ErrDuplicateTicketCode
		}
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *PGTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, ticketSelect+` WHERE t.code = $1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	return t, err
}

func (r *PGTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, ticketSelect+` ORDER BY t.created_at DESC, t.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) Cancel(ctx context.Context, id int64) (*domain.CancelledTicket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var res domain.CancelledTicket
	t := &res.Ticket
	err = tx.QueryRow(ctx, `DELETE FROM tickets WHERE id = $1
		RETURNING id, code, passenger_name, passenger_surname, passenger_email, flight_id, seat_number, created_at`, id).
		Scan(&t.ID, &t.Code, &t.PassengerName, &t.PassengerSurname, &t.PassengerEmail, &t.FlightID, &t.SeatNumber, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}

	var available, total int
	err = tx.QueryRow(ctx, `SELECT seats_available, seats_total FROM flights WHERE id = $1 FOR UPDATE`, t.FlightID).Scan(&available, &total)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Flight deleted after booking; the ticket still goes.
	case err != nil:
		return nil, err
	default:
		res.FlightFound = true
		res.Capped = available >= total
		if err := tx.QueryRow(ctx, `UPDATE flights SET seats_available = LEAST(seats_available + 1, seats_total), updated_at = now()
			WHERE id = $1 RETURNING seats_available`, t.FlightID).Scan(&res.SeatsAvailable); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *PGTicketRepository) SeatDiscrepancies(ctx context.Context) ([]domain.SeatDiscrepancy, error) {
	rows, err := r.db.Query(ctx, `SELECT f.id, f.code, f.seats_total, f.seats_available, count(t.id)
		FROM flights f
		LEFT JOIN tickets t ON t.flight_id = f.id
		GROUP BY f.id
		HAVING f.seats_total - f.seats_available <> count(t.id)
		ORDER BY f.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SeatDiscrepancy
	for rows.Next() {
		var d domain.SeatDiscrepancy
		if err := rows.Scan(&d.FlightID, &d.FlightCode, &d.SeatsTotal, &d.SeatsAvailable, &d.TicketCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ TicketRepository = (*PGTicketRepository)(nil)
