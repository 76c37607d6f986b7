package api

import (
	"errors"
	"net/http"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters only for typed errors, which match their sentinel via Is.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrInvalidCityReference, http.StatusBadRequest, "invalid_city_reference"},
	{domain.ErrFlightNotFound, http.StatusNotFound, "flight_not_found"},
	{domain.ErrTicketNotFound, http.StatusNotFound, "ticket_not_found"},
	{domain.ErrScheduleConflict, http.StatusConflict, "schedule_conflict"},
	{domain.ErrDuplicateFlightCode, http.StatusConflict, "duplicate_flight_code"},
	{domain.ErrDuplicateTicketCode, http.StatusConflict, "duplicate_ticket_code"},
	{domain.ErrNoSeatsAvailable, http.StatusConflict, "no_seats_available"},
	{domain.ErrFlightHasTickets, http.StatusConflict, "flight_has_tickets"},
	{domain.ErrAdminExists, http.StatusConflict, "admin_exists"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
}

func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// respondError writes the JSON error body. Unmapped errors are attached to the
// context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

func badRequest(c *gin.Context, field, reason string) {
	respondError(c, domain.NewInvalidInput(field, reason))
}
