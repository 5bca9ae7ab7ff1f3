package repository

import (
	"context"

	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
)

// MarkerRepository stores point markers.
type MarkerRepository interface {
	List(ctx context.Context) ([]entity.Marker, error)
	Create(ctx context.Context, m *entity.Marker) error
}
