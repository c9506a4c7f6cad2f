package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"todo-calendar/internal/domain"
	"todo-calendar/internal/ratelimit"
	"todo-calendar/internal/service"
)

const internalErrorMessage = "internal server error"

// writeError maps domain errors to a status and a client safe message.
// Anything unrecognised is logged with full detail and answered with 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, ratelimit.ErrTooManyAttempts):
		return http.StatusTooManyRequests, ratelimit.ErrTooManyAttempts.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, "email is already registered"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "todo not found"
	case errors.Is(err, service.ErrExportsDisabled):
		return http.StatusServiceUnavailable, service.ErrExportsDisabled.Error()
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// validationMessage strips the sentinel prefix, leaving "title is required" etc.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	if msg == domain.ErrValidation.Error() || msg == "" {
		return "invalid request"
	}
	return msg
}

// bindError turns a gin binding failure into a validation error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := jsonFieldName(verrs[0].Field())
		return invalid(field + " is required")
	}
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return invalid("request body is required")
	case errors.As(err, &syntaxErr):
		return invalid("request body is not valid JSON")
	case errors.As(err, &typeErr):
		return invalid(typeErr.Field + " has the wrong type")
	default:
		return invalid("invalid request body")
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// jsonFieldName lowers the first letter of a Go field name: DisplayName -> displayName.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
