package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-gis-markers/internal/interface/http"
	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
	"github.com/oksasatya/go-gis-markers/pkg/helpers"
)

// UserModule wires account routes, all behind the bearer gate.
// /users/me operates on the token identity; /users/:id on any account.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.JWT))
	{
		users.GET("/me", m.Handler.GetMe)
		users.PUT("/me", m.Handler.UpdateMe)
		users.DELETE("/me", m.Handler.DeleteMe)
		users.GET("/:id", m.Handler.GetByID)
		users.PUT("/:id", m.Handler.UpdateByID)
		users.DELETE("/:id", m.Handler.DeleteByID)
	}
}
