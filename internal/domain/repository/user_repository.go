package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, id int64, patch entity.UserPatch) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")
