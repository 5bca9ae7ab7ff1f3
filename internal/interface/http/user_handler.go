package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-gis-markers/internal/application"
	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
	"github.com/oksasatya/go-gis-markers/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Errors ErrorResponder
}

func NewUserHandler(svc *application.UserService, errs ErrorResponder) *UserHandler {
	return &UserHandler{Svc: svc, Errors: errs}
}

// updateUserRequest is sparse: a nil field is left unchanged.
type updateUserRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	NewPassword *string `json:"newPassword" binding:"omitempty,pwd"`
}

func (r updateUserRequest) input() application.UpdateProfileInput {
	return application.UpdateProfileInput{Username: r.Username, Email: r.Email, NewPassword: r.NewPassword}
}

// self returns the gate identity; /users/me never trusts a client-supplied id.
func (h *UserHandler) self(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: apperror.KindUnauthorized.String()})
		return 0, false
	}
	return id.UserID, true
}

func (h *UserHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.Errors.Respond(c, apperror.Validation("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func (h *UserHandler) get(c *gin.Context, id int64) {
	u, err := h.Svc.GetProfile(c.Request.Context(), id)
	if err != nil {
		h.Errors.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user fetched", nil)
}

func (h *UserHandler) update(c *gin.Context, id int64) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Errors.BindError(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), id, req.input())
	if err != nil {
		h.Errors.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

func (h *UserHandler) delete(c *gin.Context, id int64) {
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.Errors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	if id, ok := h.self(c); ok {
		h.get(c, id)
	}
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	if id, ok := h.self(c); ok {
		h.update(c, id)
	}
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	if id, ok := h.self(c); ok {
		h.delete(c, id)
	}
}

func (h *UserHandler) GetByID(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		h.get(c, id)
	}
}

func (h *UserHandler) UpdateByID(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		h.update(c, id)
	}
}

func (h *UserHandler) DeleteByID(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		h.delete(c, id)
	}
}
