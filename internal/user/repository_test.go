package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "gym_id", "created_at"}).
		AddRow(1, "Alice", "a@example.com", "hash", "client", 7, now)
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, closeDB := setupUserMock(t)
	defer closeDB()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password_hash, role, gym_id)")).
		WithArgs("Alice", "a@example.com", "hash", "client", 7).
		WillReturnRows(userRows(now))

	u, err := repo.Create(ctx, "Alice", "a@example.com", "hash", "client", 7)
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.Equal(t, 7, u.GymID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, role, gym_id, created_at")).
		WithArgs("a@example.com").
		WillReturnRows(userRows(now))

	fu, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", fu.Name)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, role, gym_id, created_at")).
		WithArgs(1).
		WillReturnRows(userRows(now))

	byID, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", byID.Email)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailExists(t *testing.T) {
	repo, mock, closeDB := setupUserMock(t)
	defer closeDB()

	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err = repo.EmailExists(ctx, "missing@example.com")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
