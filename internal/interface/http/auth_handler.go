package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-gis-markers/internal/application"
	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	"github.com/oksasatya/go-gis-markers/pkg/response"
)

type AuthHandler struct {
	Svc    *application.UserService
	Errors ErrorResponder
}

func NewAuthHandler(svc *application.UserService, errs ErrorResponder) *AuthHandler {
	return &AuthHandler{Svc: svc, Errors: errs}
}

type registerRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,pwd"`
	Email    *string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Errors.BindError(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		h.Errors.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user registered", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Errors.BindError(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Errors.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	}, "login successful", nil)
}
