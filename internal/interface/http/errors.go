package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/pkg/helpers"
	"github.com/oksasatya/go-gis-markers/pkg/response"
	"github.com/oksasatya/go-gis-markers/pkg/validation"
)

// ErrorResponder turns service errors into the error envelope. Internal causes
// are only echoed to clients in development.
type ErrorResponder struct {
	Logger      *logrus.Logger
	ExposeCause bool
}

func (r ErrorResponder) Respond(c *gin.Context, err error) {
	ae := apperror.As(err)
	status := ae.Kind.HTTPStatus()
	body := response.ErrorBody{Code: ae.Kind.String()}

	message := ae.Message
	switch ae.Kind {
	case apperror.KindValidation:
		if ae.Field != "" {
			message = ae.Field + " " + ae.Message
			body.Details = map[string]string{ae.Field: ae.Message}
		}
	case apperror.KindConflict:
		if ae.Field != "" {
			body.Details = map[string]string{ae.Field: "already exists"}
		}
	case apperror.KindInternal:
		helpers.LogError(r.Logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		})
		if r.ExposeCause && ae.Err != nil {
			body.Cause = ae.Err.Error()
		}
	}
	response.Error(c, status, message, body)
}

// BindError reports a payload that failed to decode or to pass binding tags.
func (r ErrorResponder) BindError(c *gin.Context, err error) {
	details := validation.ToDetails(err)
	response.Error(c, http.StatusBadRequest, validation.FirstMessage(details), response.ErrorBody{
		Code:    apperror.KindValidation.String(),
		Details: details,
	})
}
