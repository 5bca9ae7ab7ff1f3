package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-gis-markers/internal/interface/http"
	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
	"github.com/oksasatya/go-gis-markers/pkg/helpers"
)

// MarkerModule wires GET and POST /api/markers behind the bearer gate.
type MarkerModule struct {
	Handler *handlers.MarkerHandler
	JWT     *helpers.JWTManager
}

func NewMarkerModule(h *handlers.MarkerHandler, jwt *helpers.JWTManager) *MarkerModule {
	return &MarkerModule{Handler: h, JWT: jwt}
}

func (m *MarkerModule) Register(rg *gin.RouterGroup) {
	markers := rg.Group("/markers")
	markers.Use(middleware.Auth(m.JWT))
	{
		markers.GET("", m.Handler.List)
		markers.POST("", m.Handler.Create)
	}
}
