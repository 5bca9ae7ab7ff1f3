package postgres

import (
	"context"
	"database/sql"

	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	"github.com/oksasatya/go-gis-markers/internal/domain/repository"
)

type MarkerRepository struct {
	db DBTX
}

func NewMarkerRepository(db DBTX) *MarkerRepository {
	return &MarkerRepository{db: db}
}

func (r *MarkerRepository) List(ctx context.Context) ([]entity.Marker, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, ST_Y(geom) AS lat, ST_X(geom) AS lng, created_by, created_at
		FROM gis_schema.markers
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.Marker, 0)
	for rows.Next() {
		var m entity.Marker
		var createdBy sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Lat, &m.Lng, &createdBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		if createdBy.Valid {
			m.CreatedBy = &createdBy.Int64
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create stores the marker as a WGS84 point. ST_MakePoint takes (x, y), i.e. (lng, lat).
func (r *MarkerRepository) Create(ctx context.Context, m *entity.Marker) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO gis_schema.markers (title, description, geom, created_by)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5)
		RETURNING id, ST_Y(geom) AS lat, ST_X(geom) AS lng, created_at
	`, m.Title, m.Description, m.Lng, m.Lat, m.CreatedBy)
	return row.Scan(&m.ID, &m.Lat, &m.Lng, &m.CreatedAt)
}

var _ repository.MarkerRepository = (*MarkerRepository)(nil)
