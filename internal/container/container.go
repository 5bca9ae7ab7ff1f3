package container

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/config"
	"github.com/oksasatya/go-gis-markers/internal/application"
	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
	"github.com/oksasatya/go-gis-markers/pkg/helpers"
)

// Container holds the process-wide components built once in main and shared
// read-only by every request. Router modules are wired from it.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *sql.DB
	Redis  *redis.Client // nil when REDIS_ADDR is unset
	JWT    *helpers.JWTManager
	Events application.EventPublisher

	// RateCounter backs every rate limiter: Redis when available, otherwise in-process.
	RateCounter middleware.Counter

	// Metrics is the registry served on /metrics; nil disables instrumentation.
	Metrics *prometheus.Registry
}

// RateCounterFor picks the counter store for the configured backends.
func RateCounterFor(rdb *redis.Client) middleware.Counter {
	if rdb != nil {
		return middleware.NewRedisCounter(rdb)
	}
	return middleware.NewMemoryCounter()
}
