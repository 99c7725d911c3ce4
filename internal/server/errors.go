package server

import (
	"errors"
	"net/http"

	countrydomain "github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/altura-labs/countryatlas/internal/refresh"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, refresh.ErrCountriesUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "countries_source_unavailable",
			Message: "could not fetch country reference data from upstream",
		}
	case errors.Is(err, refresh.ErrRatesUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "rates_source_unavailable",
			Message: "could not fetch exchange rates from upstream",
		}
	case errors.Is(err, refresh.ErrPersistence):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "failed to persist refreshed records",
		}
	case errors.Is(err, countrydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "no matching record",
		}
	case errors.Is(err, countrydomain.ErrInvalidName),
		errors.Is(err, countrydomain.ErrInvalidSort),
		errors.Is(err, countrydomain.ErrInvalidOrder):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal error",
		}
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "server", payload.Type
	}
	if status >= http.StatusBadRequest {
		return "client", payload.Type
	}
	return "", payload.Type
}
