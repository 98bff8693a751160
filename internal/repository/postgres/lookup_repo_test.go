package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"eventhub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name FROM categories WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(10), "music"))
	mock.ExpectQuery(`SELECT id, name FROM categories WHERE id = \$1`).
		WithArgs(int64(11)).
		WillReturnError(sql.ErrNoRows)

	repo := NewCategoryRepository(db)
	got, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, &domain.Category{ID: 10, Name: "music"}, got)

	_, err = repo.GetByID(context.Background(), 11)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLocationRepository_FindOrCreate(t *testing.T) {
	tests := []struct {
		name   string
		mock   func(mock sqlmock.Sqlmock)
		wantID int64
	}{
		{
			name: "existing coordinates",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id FROM locations WHERE lat = \$1 AND lon = \$2`).
					WithArgs(55.75, 37.61).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
			},
			wantID: 3,
		},
		{
			name: "new coordinates",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id FROM locations`).
					WithArgs(55.75, 37.61).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`INSERT INTO locations \(lat, lon\) VALUES \(\$1, \$2\)\s+ON CONFLICT \(lat, lon\)`).
					WithArgs(55.75, 37.61).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
			},
			wantID: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewLocationRepository(db).FindOrCreate(context.Background(), 55.75, 37.61)
			require.NoError(t, err)
			assert.Equal(t, &domain.Location{ID: tt.wantID, Lat: 55.75, Lon: 37.61}, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, email\s+FROM users\s+WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(int64(1), "alice", "alice@example.com"))
	mock.ExpectQuery(`FROM users`).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepository(db)
	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 1, Name: "alice", Email: "alice@example.com"}, got)

	_, err = repo.GetByID(context.Background(), 2)
	require.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users .* CREATE TABLE IF NOT EXISTS participation_requests`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(sql.ErrConnDone)
	err = Migrate(context.Background(), db)
	require.True(t, errors.Is(err, sql.ErrConnDone))
	require.NoError(t, mock.ExpectationsWereMet())
}
