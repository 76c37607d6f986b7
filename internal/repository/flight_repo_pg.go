package repository

import (
	"context"
	"errors"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `f.id, f.code, f.from_city_id, f.to_city_id, COALESCE(fc.name, ''), COALESCE(tc.name, ''),
	f.departure_time, f.arrival_time, f.price_cents, f.seats_total, f.seats_available, f.created_at, f.updated_at`

const flightFrom = `FROM flights f
	LEFT JOIN cities fc ON fc.id = f.from_city_id
	LEFT JOIN cities tc ON tc.id = f.to_city_id`

type PGFlightRepository struct {
	db  *pgxpool.Pool
	loc *time.Location
}

// NewFlightRepository returns a repository that buckets schedule slots on the
// wall clock of loc.
func NewFlightRepository(db *pgxpool.Pool, loc *time.Location) FlightRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PGFlightRepository{db: db, loc: loc}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(row rowScanner) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Code, &f.FromCityID, &f.ToCityID, &f.FromCityName, &f.ToCityName,
		&f.DepartureTime, &f.ArrivalTime, &f.PriceCents, &f.SeatsTotal, &f.SeatsAvailable, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) queryFlights(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.queryFlights(ctx, `SELECT `+flightColumns+` `+flightFrom+` ORDER BY f.departure_time, f.id`)
}

func (r *PGFlightRepository) Search(ctx context.Context, fromCityID, toCityID int64, from, to time.Time) ([]domain.Flight, error) {
	return r.queryFlights(ctx, `SELECT `+flightColumns+` `+flightFrom+`
		WHERE f.from_city_id = $1 AND f.to_city_id = $2 AND f.departure_time >= $3 AND f.departure_time < $4
		ORDER BY f.departure_time, f.id`, fromCityID, toCityID, from, to)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` `+flightFrom+` WHERE f.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) FindSlotOccupant(ctx context.Context, slot domain.Slot, excludeID int64) (*domain.Flight, error) {
	where := `f.from_city_id = $1 AND f.departure_time >= $2 AND f.departure_time < $3`
	if slot.Side == domain.SideArrival {
		where = `f.to_city_id = $1 AND f.arrival_time >= $2 AND f.arrival_time < $3`
	}
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` `+flightFrom+`
		WHERE `+where+` AND f.id <> $4 ORDER BY f.id LIMIT 1`, slot.CityID, slot.Bucket.Start, slot.Bucket.End(), excludeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	slots := domain.SlotsOf(*flight, r.loc)
	err := r.db.QueryRow(ctx, `INSERT INTO flights
		(code, from_city_id, to_city_id, departure_time, arrival_time, departure_hour, arrival_hour, price_cents, seats_total, seats_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		flight.Code, flight.FromCityID, flight.ToCityID, flight.DepartureTime, flight.ArrivalTime,
		slots[0].Bucket.Start, slots[1].Bucket.Start, flight.PriceCents, flight.SeatsTotal, flight.SeatsAvailable).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return flightWriteError(err, slots)
	}
	return nil
}

func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight) error {
	slots := domain.SlotsOf(*flight, r.loc)
	err := r.db.QueryRow(ctx, `UPDATE flights SET
			code = $2, from_city_id = $3, to_city_id = $4, departure_time = $5, arrival_time = $6,
			departure_hour = $7, arrival_hour = $8, price_cents = $9,
			seats_available = seats_available + ($10 - seats_total), seats_total = $10,
			updated_at = now()
		WHERE id = $1 AND seats_total - seats_available <= $10
		RETURNING seats_available, created_at, updated_at`,
		flight.ID, flight.Code, flight.FromCityID, flight.ToCityID, flight.DepartureTime, flight.ArrivalTime,
		slots[0].Bucket.Start, slots[1].Bucket.Start, flight.PriceCents, flight.SeatsTotal).
		Scan(&flight.SeatsAvailable, &flight.CreatedAt, &flight.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id = $1)`, flight.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrFlightNotFound
		}
		return domain.NewInvalidInput("seats_total", "is below the number of booked seats")
	}
	if err != nil {
		return flightWriteError(err, slots)
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64, rejectBooked bool) error {
	if !rejectBooked {
		cmd, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrFlightNotFound
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The row lock orders this delete against Issue, which updates the same row
	// before inserting its ticket.
	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM flights WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrFlightNotFound
		}
		return err
	}

	var booked bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE flight_id = $1)`, id).Scan(&booked); err != nil {
		return err
	}
	if booked {
		return domain.ErrFlightHasTickets
	}

	if _, err := tx.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGFlightRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights`).Scan(&n)
	return n, err
}

// flightWriteError translates constraint violations into domain errors.
func flightWriteError(err error, slots [2]domain.Slot) error {
	if pgErr, ok := constraintError(err, pgUniqueViolation); ok {
		switch pgErr.ConstraintName {
		case "flights_code_key":
			return domain.ErrDuplicateFlightCode
		case "flights_departure_slot_key":
			return slotConflict(slots[0])
		case "flights_arrival_slot_key":
			return slotConflict(slots[1])
		}
	}
	if pgErr, ok := constraintError(err, pgForeignKeyViolation); ok {
		switch pgErr.ConstraintName {
		case "flights_from_city_id_fkey":
			return &domain.InvalidCityReferenceError{Side: domain.SideDeparture, CityID: slots[0].CityID}
		case "flights_to_city_id_fkey":
			return &domain.InvalidCityReferenceError{Side: domain.SideArrival, CityID: slots[1].CityID}
		}
	}
	if pgErr, ok := constraintError(err, pgCheckViolation); ok {
		return domain.NewInvalidInput(pgErr.ConstraintName, "violated")
	}
	return err
}

func slotConflict(slot domain.Slot) error {
	return &domain.ScheduleConflictError{Side: slot.Side, CityID: slot.CityID, Bucket: slot.Bucket.Start}
}

var _ FlightRepository = (*PGFlightRepository)(nil)
