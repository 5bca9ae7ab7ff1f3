package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	"github.com/oksasatya/go-gis-markers/internal/domain/repository"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func strPtr(s string) *string { return &s }

var (
	insertUserSQL = `INSERT INTO gis_schema\.users \(username, email, password\)\s+VALUES \(\$1, \$2, \$3\)\s+RETURNING id, created_at, updated_at`
	userCols      = []string{"id", "username", "email", "created_at", "updated_at"}
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(insertUserSQL).
		WithArgs("alice123", "a@x.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	u := &entity.User{Username: "alice123", Email: strPtr("a@x.com"), Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserRepository_Create_NullEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(insertUserSQL).
		WithArgs("bob", nil, "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(2), now, now))

	u := &entity.User{Username: "bob", Password: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int64(2), u.ID)
}

func TestUserRepository_Create_Conflicts(t *testing.T) {
	cases := map[string]*pgconn.PgError{
		"username": {Code: "23505", ConstraintName: "users_username_lower_key", Detail: "Key (lower(username::text))=(alice123) already exists."},
		"email":    {Code: "23505", ConstraintName: "users_email_lower_key", Detail: "Key (lower(email::text))=(a@x.com) already exists."},
	}
	for column, pgErr := range cases {
		t.Run(column, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db)

			mock.ExpectQuery(insertUserSQL).WillReturnError(pgErr)

			err := repo.Create(context.Background(), &entity.User{Username: "alice123", Email: strPtr("a@x.com"), Password: "hash"})
			require.Error(t, err)
			ae := apperror.As(err)
			assert.Equal(t, apperror.KindConflict, ae.Kind)
			assert.Equal(t, column, ae.Field)
			assert.Equal(t, column+" already exists", ae.Message)
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, email, created_at, updated_at\s+FROM gis_schema\.users\s+WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(5), "alice123", nil, now, now))

	u, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "alice123", u.Username)
	assert.Nil(t, u.Email)
	assert.Empty(t, u.Password)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM gis_schema\.users\s+WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_GetByUsername_ReadsHash(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, email, created_at, updated_at, password\s+FROM gis_schema\.users\s+WHERE lower\(username\) = lower\(\$1\)`).
		WithArgs("Alice123").
		WillReturnRows(sqlmock.NewRows(append(userCols, "password")).AddRow(int64(5), "alice123", "a@x.com", now, now, "hash"))

	u, err := repo.GetByUsername(context.Background(), "Alice123")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.Password)
	require.NotNil(t, u.Email)
	assert.Equal(t, "a@x.com", *u.Email)
}

func TestUserRepository_Update_OnlyUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	q := regexp.QuoteMeta(`UPDATE gis_schema.users SET username = $1, updated_at = now() WHERE id = $2 RETURNING id, username, email, created_at, updated_at`)
	mock.ExpectQuery("^" + q + "$").
		WithArgs("renamed", int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(5), "renamed", "a@x.com", now, now))

	u, err := repo.Update(context.Background(), 5, entity.UserPatch{Username: strPtr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", u.Username)
	require.NotNil(t, u.Email)
	assert.Equal(t, "a@x.com", *u.Email)
}

func TestUserRepository_Update_AllFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	q := regexp.QuoteMeta(`UPDATE gis_schema.users SET username = $1, email = $2, password = $3, updated_at = now() WHERE id = $4 RETURNING id, username, email, created_at, updated_at`)
	mock.ExpectQuery("^"+q+"$").
		WithArgs("renamed", "n@x.com", "newhash", int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(5), "renamed", "n@x.com", now, now))

	_, err := repo.Update(context.Background(), 5, entity.UserPatch{
		Username:     strPtr("renamed"),
		Email:        strPtr("n@x.com"),
		PasswordHash: strPtr("newhash"),
	})
	require.NoError(t, err)
}

func TestUserRepository_Update_PasswordOnlyRenumbers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	q := regexp.QuoteMeta(`UPDATE gis_schema.users SET password = $1, updated_at = now() WHERE id = $2 RETURNING id, username, email, created_at, updated_at`)
	mock.ExpectQuery("^"+q+"$").
		WithArgs("newhash", int64(5)).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(5), "alice", nil, now, now))

	_, err := repo.Update(context.Background(), 5, entity.UserPatch{PasswordHash: strPtr("newhash")})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_EmptyPatchNeverQueries(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewUserRepository(db)

	_, err := repo.Update(context.Background(), 5, entity.UserPatch{})
	require.ErrorIs(t, err, ErrEmptyPatch)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`UPDATE gis_schema\.users SET email = \$1`).
		WithArgs("n@x.com", int64(9)).
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.Update(context.Background(), 9, entity.UserPatch{Email: strPtr("n@x.com")})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Update_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`UPDATE gis_schema\.users SET email = \$1`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"})

	_, err := repo.Update(context.Background(), 9, entity.UserPatch{Email: strPtr("taken@x.com")})
	ae := apperror.As(err)
	assert.Equal(t, apperror.KindConflict, ae.Kind)
	assert.Equal(t, "email", ae.Field)
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`DELETE FROM gis_schema\.users WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5))
}
