package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
)

// DebugModule exposes /debug/vars (expvar) and /metrics (Prometheus),
// rate-limited per IP with private callers exempt.
type DebugModule struct {
	Registry *prometheus.Registry
	Counter  middleware.Counter
	Logger   *logrus.Logger
}

func NewDebugModule(reg *prometheus.Registry, counter middleware.Counter, logger *logrus.Logger) *DebugModule {
	return &DebugModule{Registry: reg, Counter: counter, Logger: logger}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Counter, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP(), m.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/metrics", rl, gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
}
