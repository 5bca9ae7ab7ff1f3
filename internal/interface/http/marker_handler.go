package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-gis-markers/internal/application"
	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/interface/middleware"
	"github.com/oksasatya/go-gis-markers/pkg/response"
)

type MarkerHandler struct {
	Svc    *application.MarkerService
	Errors ErrorResponder
}

func NewMarkerHandler(svc *application.MarkerService, errs ErrorResponder) *MarkerHandler {
	return &MarkerHandler{Svc: svc, Errors: errs}
}

type createMarkerRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat" binding:"required,latitude_deg"`
	Lng         *float64 `json:"lng" binding:"required,longitude_deg"`
}

func (h *MarkerHandler) List(c *gin.Context) {
	markers, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.Errors.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, markers, "markers fetched", map[string]any{"count": len(markers)})
}

func (h *MarkerHandler) Create(c *gin.Context) {
	id, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: apperror.KindUnauthorized.String()})
		return
	}
	var req createMarkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Errors.BindError(c, err)
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), id.UserID, application.CreateMarkerInput{
		Title:       req.Title,
		Description: req.Description,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
	})
	if err != nil {
		h.Errors.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, m, "marker created", nil)
}
