package repository

import (
	"context"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGCityRepository struct {
	db *pgxpool.Pool
}

func NewCityRepository(db *pgxpool.Pool) CityRepository {
	return &PGCityRepository{db: db}
}

func (r *PGCityRepository) List(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, created_at FROM cities ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]domain.City, 0)
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *PGCityRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.City, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, created_at FROM cities WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]domain.City, len(ids))
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		found[c.ID] = c
	}
	return found, rows.Err()
}

func (r *PGCityRepository) Upsert(ctx context.Context, cities []domain.City) (int, error) {
	if len(cities) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range cities {
		batch.Queue(`INSERT INTO cities (code, name) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`, c.Code, c.Name)
	}

	results := tx.SendBatch(ctx, batch)
	written := 0
	for range cities {
		cmd, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, err
		}
		written += int(cmd.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

var _ CityRepository = (*PGCityRepository)(nil)
