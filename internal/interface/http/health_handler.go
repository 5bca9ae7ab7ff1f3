package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/internal/application"
	"github.com/oksasatya/go-gis-markers/pkg/response"
)

type HealthHandler struct {
	Svc    *application.HealthService
	Logger *logrus.Logger
	// ExposeCause puts the driver error into the db field (development only).
	ExposeCause bool
}

func NewHealthHandler(svc *application.HealthService, logger *logrus.Logger, exposeCause bool) *HealthHandler {
	return &HealthHandler{Svc: svc, Logger: logger, ExposeCause: exposeCause}
}

type healthStatus struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.Svc.CheckDB(c.Request.Context()); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("health check: database unreachable")
		}
		detail := "unavailable"
		if h.ExposeCause {
			detail = err.Error()
		}
		response.Error(c, http.StatusInternalServerError, "database unreachable", healthStatus{Status: "error", DB: detail})
		return
	}
	response.Success(c, http.StatusOK, healthStatus{Status: "ok", DB: "connected"}, "healthy", nil)
}
