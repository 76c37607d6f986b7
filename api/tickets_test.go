package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) Issue(ctx context.Context, input tickets.IssueInput) (*domain.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketUseCase) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketUseCase) List(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketUseCase) Cancel(ctx context.Context, id int64) (*domain.CancelledTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CancelledTicket), args.Error(1)
}

func (m *MockTicketUseCase) AuditSeats(ctx context.Context) ([]domain.SeatDiscrepancy, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.SeatDiscrepancy), args.Error(1)
}

func TestTicketHandler_issue(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)
	c, w := newTestContext("POST", "/api/tickets", `{"flight_id": 1, "passenger_name": "Ayşe", "passenger_surname": "Yılmaz", "passenger_email": "ayse@example.com"}`)

	flight := sampleFlight
	issued := &domain.Ticket{ID: 3, Code: "TK-1A2B3C4D", FlightID: 1, PassengerName: "Ayşe", PassengerSurname: "Yılmaz",
		PassengerEmail: "ayse@example.com", CreatedAt: time.Now(), Flight: &flight}
	mockService.On("Issue", c.Request.Context(), tickets.IssueInput{
		FlightID: 1, PassengerName: "Ayşe", PassengerSurname: "Yılmaz", PassengerEmail: "ayse@example.com",
	}).Return(issued, nil)

	handler.issue(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body ticketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TK-1A2B3C4D", body.TicketCode)
	require.NotNil(t, body.Flight)
	assert.Equal(t, "TK100", body.Flight.FlightCode)
	mockService.AssertExpectations(t)
}

func TestTicketHandler_issue_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no seats", domain.ErrNoSeatsAvailable, http.StatusConflict, "no_seats_available"},
		{"missing flight", domain.ErrFlightNotFound, http.StatusNotFound, "flight_not_found"},
		{"bad email", domain.NewInvalidInput("passenger_email", "is not a valid address"), http.StatusBadRequest, "invalid_input"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockTicketUseCase{}
			handler := NewTicketHandler(mockService)
			c, w := newTestContext("POST", "/api/tickets", `{"flight_id": 1}`)
			mockService.On("Issue", c.Request.Context(), tickets.IssueInput{FlightID: 1}).Return(nil, tc.err)

			handler.issue(c)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestTicketHandler_getByCode_NotFound(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)
	c, w := newTestContext("GET", "/api/tickets/TK-NOPE", "")
	c.Params = gin.Params{{Key: "code", Value: "TK-NOPE"}}

	mockService.On("GetByCode", c.Request.Context(), "TK-NOPE").Return(nil, domain.ErrTicketNotFound)

	handler.getByCode(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ticket not found", decodeError(t, w).Error)
}

func TestTicketHandler_cancel(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)
	c, w := newTestContext("DELETE", "/api/tickets/3", "")
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	mockService.On("Cancel", c.Request.Context(), int64(3)).Return(&domain.CancelledTicket{
		Ticket: domain.Ticket{ID: 3, Code: "TK-1A2B3C4D", FlightID: 1}, FlightFound: true, SeatsAvailable: 76,
	}, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body cancelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.FlightFound)
	assert.Equal(t, 76, body.SeatsAvailable)
	assert.Nil(t, body.Ticket.Flight)
}

func TestTicketHandler_list(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)
	c, w := newTestContext("GET", "/api/tickets", "")

	mockService.On("List", c.Request.Context()).Return([]domain.Ticket{{ID: 2, Code: "TK-B"}, {ID: 1, Code: "TK-A"}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []ticketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TK-B", body[0].TicketCode)
}
