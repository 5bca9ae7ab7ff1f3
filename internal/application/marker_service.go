package application

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	repo "github.com/oksasatya/go-gis-markers/internal/domain/repository"
)

const MarkerTitleMaxLength = 255

type MarkerService struct {
	Repo   repo.MarkerRepository
	Events EventPublisher
	Logger *logrus.Logger
}

func NewMarkerService(r repo.MarkerRepository, events EventPublisher, logger *logrus.Logger) *MarkerService {
	if events == nil {
		events = NopPublisher{}
	}
	return &MarkerService{Repo: r, Events: events, Logger: logger}
}

type CreateMarkerInput struct {
	Title       string
	Description string
	Lat         float64
	Lng         float64
}

func (in CreateMarkerInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.Validation("title", "is required")
	}
	if utf8.RuneCountInString(in.Title) > MarkerTitleMaxLength {
		return apperror.Validation("title", fmt.Sprintf("must be at most %d characters long", MarkerTitleMaxLength))
	}
	if math.IsNaN(in.Lat) || in.Lat < -90 || in.Lat > 90 {
		return apperror.Validation("lat", "must be between -90 and 90")
	}
	if math.IsNaN(in.Lng) || in.Lng < -180 || in.Lng > 180 {
		return apperror.Validation("lng", "must be between -180 and 180")
	}
	return nil
}

func (s *MarkerService) List(ctx context.Context) ([]entity.Marker, error) {
	markers, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list markers: %w", err))
	}
	return markers, nil
}

// Create stores a marker attributed to createdBy, the authenticated caller.
func (s *MarkerService) Create(ctx context.Context, createdBy int64, in CreateMarkerInput) (*entity.Marker, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := &entity.Marker{
		Title:       in.Title,
		Description: in.Description,
		Lat:         in.Lat,
		Lng:         in.Lng,
		CreatedBy:   &createdBy,
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create marker: %w", err))
	}
	s.Events.Publish(ctx, NewEvent(EventMarkerCreated, map[string]any{
		"marker_id":  m.ID,
		"created_by": createdBy,
		"lat":        m.Lat,
		"lng":        m.Lng,
	}))
	return m, nil
}
