package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	"github.com/oksasatya/go-gis-markers/internal/domain/repository"
)

const usersTable = Schema + ".users"

// userColumns is the public projection: everything except the password hash.
var userColumns = []string{"id", "username", "email", "created_at", "updated_at"}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, withPassword bool) (*entity.User, error) {
	u := &entity.User{}
	var email sql.NullString
	dest := []any{&u.ID, &u.Username, &email, &u.CreatedAt, &u.UpdatedAt}
	if withPassword {
		dest = append(dest, &u.Password)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if email.Valid {
		u.Email = &email.String
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO gis_schema.users (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Password)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, created_at, updated_at
		FROM gis_schema.users
		WHERE id = $1
	`, id)
	return scanUser(row, false)
}

// GetByUsername matches case-insensitively, like the unique index, and is the
// only query that reads the password hash.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, created_at, updated_at, password
		FROM gis_schema.users
		WHERE lower(username) = lower($1)
	`, username)
	return scanUser(row, true)
}

func (r *UserRepository) Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error) {
	query, args, err := NewPatch(usersTable, "id", id).
		SetIf(patch.Username != nil, "username", deref(patch.Username)).
		SetIf(patch.Email != nil, "email", deref(patch.Email)).
		SetIf(patch.PasswordHash != nil, "password", deref(patch.PasswordHash)).
		Touch("updated_at").
		Returning(userColumns...).
		Build()
	if err != nil {
		if errors.Is(err, ErrEmptyPatch) {
			return nil, &apperror.Error{Kind: apperror.KindValidation, Message: "no fields to update", Err: err}
		}
		return nil, fmt.Errorf("build user patch: %w", err)
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...), false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, translateWriteError(err)
	}
	return u, nil
}

// Delete removes the row unconditionally; deleting a missing id is not an error.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM gis_schema.users WHERE id = $1`, id)
	return err
}

func translateWriteError(err error) error {
	if col, ok := uniqueViolationColumn(err, "username", "email"); ok {
		return apperror.Conflict(col, err)
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
