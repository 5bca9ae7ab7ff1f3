package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-gis-markers/internal/interface/http"
	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
)

// AuthModule wires the public credential endpoints:
// POST /register, POST /login
type AuthModule struct {
	Handler *handlers.AuthHandler
	Counter middleware.Counter
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, counter middleware.Counter, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Counter: counter, Logger: logger}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// bcrypt endpoints get a tighter per-route limit on top of the global one
	registerLimiter := middleware.RateLimit(m.Counter, 20, time.Minute, middleware.KeyByIPAndPath(), nil, m.Logger)
	loginLimiter := middleware.RateLimit(m.Counter, 10, time.Minute, middleware.KeyByIPAndPath(), nil, m.Logger)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)
}
