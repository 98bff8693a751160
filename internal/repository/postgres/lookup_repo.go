package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type categoryRepository struct {
	DB *sql.DB
}

// NewCategoryRepository returns a domain.CategoryRepository implemented with Postgres.
func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.DB.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

type locationRepository struct {
	DB *sql.DB
}

// NewLocationRepository returns a domain.LocationRepository implemented with Postgres.
func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{DB: db}
}

func (r *locationRepository) FindOrCreate(ctx context.Context, lat, lon float64) (*domain.Location, error) {
	l := &domain.Location{Lat: lat, Lon: lon}
	err := r.DB.QueryRowContext(ctx, `SELECT id FROM locations WHERE lat = $1 AND lon = $2`, lat, lon).Scan(&l.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent insert of the same pair resolves to the existing row.
		err = r.DB.QueryRowContext(ctx,
			`INSERT INTO locations (lat, lon) VALUES ($1, $2)
			 ON CONFLICT (lat, lon) DO UPDATE SET lat = EXCLUDED.lat
			 RETURNING id`, lat, lon).Scan(&l.ID)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}
