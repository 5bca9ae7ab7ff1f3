package application

import (
	"context"
	"time"

	repo "github.com/oksasatya/go-gis-markers/internal/domain/repository"
)

type HealthService struct {
	DB      repo.HealthChecker
	Timeout time.Duration
}

func NewHealthService(db repo.HealthChecker) *HealthService {
	return &HealthService{DB: db, Timeout: 3 * time.Second}
}

// CheckDB runs a trivial query against the store.
func (s *HealthService) CheckDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return s.DB.Ping(ctx)
}
