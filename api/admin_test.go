package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/service/admin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAdminUseCase struct {
	mock.Mock
}

func (m *MockAdminUseCase) Login(ctx context.Context, username, password string) (*admin.Token, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Token), args.Error(1)
}

func (m *MockAdminUseCase) Verify(ctx context.Context, token string) (*domain.Admin, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminUseCase) Register(ctx context.Context, username, password string) (*domain.Admin, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockAdminUseCase) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	args := m.Called(ctx, username, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminUseCase) Stats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

type MockCityUseCase struct {
	mock.Mock
}

func (m *MockCityUseCase) List(ctx context.Context) ([]domain.City, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.City), args.Error(1)
}

func (m *MockCityUseCase) Seed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestAdminHandler_login(t *testing.T) {
	mockService := &MockAdminUseCase{}
	handler := NewAdminHandler(mockService)
	c, w := newTestContext("POST", "/api/admin/login", `{"username": "admin", "password": "admin123"}`)

	expires := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	mockService.On("Login", c.Request.Context(), "admin", "admin123").Return(&admin.Token{
		AccessToken: "signed", ExpiresAt: expires, Admin: domain.Admin{ID: 1, Username: "admin"},
	}, nil)

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "signed", body.Token)
	assert.Equal(t, "2025-06-02T10:00:00Z", body.ExpiresAt)
	assert.Equal(t, adminResponse{ID: 1, Username: "admin"}, body.Admin)
}

func TestAdminHandler_register(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"exists", domain.ErrAdminExists, http.StatusConflict},
		{"short password", domain.NewInvalidInput("password", "must be at least 6 characters"), http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockAdminUseCase{}
			handler := NewAdminHandler(mockService)
			c, w := newTestContext("POST", "/api/admin/register", `{"username": "ops", "password": "secret1"}`)

			if tc.err != nil {
				mockService.On("Register", c.Request.Context(), "ops", "secret1").Return(nil, tc.err)
			} else {
				mockService.On("Register", c.Request.Context(), "ops", "secret1").Return(&domain.Admin{ID: 2, Username: "ops"}, nil)
			}

			handler.register(c)

			assert.Equal(t, tc.status, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_stats(t *testing.T) {
	mockService := &MockAdminUseCase{}
	handler := NewAdminHandler(mockService)
	c, w := newTestContext("GET", "/api/admin/stats", "")

	mockService.On("Stats", c.Request.Context()).Return(domain.Stats{
		TotalFlights: 4, TotalBookings: 9, RecentBookings: 2, TotalRevenueCents: 123400,
	}, nil)

	handler.stats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, statsResponse{TotalFlights: 4, TotalBookings: 9, RecentBookings: 2, TotalRevenueCents: 123400}, body)
}

func TestAdminAuth(t *testing.T) {
	mockService := &MockAdminUseCase{}
	middleware := AdminAuth(mockService)

	c, w := newTestContext("GET", "/api/admin/verify", "")
	c.Request.Header.Set("Authorization", "Token abc")
	middleware(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())

	c, _ = newTestContext("GET", "/api/admin/verify", "")
	c.Request.Header.Set("Authorization", "Bearer good")
	mockService.On("Verify", c.Request.Context(), "good").Return(&domain.Admin{ID: 1, Username: "admin"}, nil)
	middleware(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, domain.Admin{ID: 1, Username: "admin"}, currentAdmin(c))
}

func TestCityHandler(t *testing.T) {
	mockService := &MockCityUseCase{}
	handler := NewCityHandler(mockService)

	c, w := newTestContext("GET", "/api/cities", "")
	mockService.On("List", c.Request.Context()).Return([]domain.City{{ID: 6, Code: "06", Name: "Ankara"}}, nil)
	handler.list(c)
	assert.Equal(t, http.StatusOK, w.Code)
	var cities []cityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.Equal(t, []cityResponse{{ID: 6, Code: "06", Name: "Ankara"}}, cities)

	c, w = newTestContext("POST", "/api/admin/seed-cities", "")
	mockService.On("Seed", c.Request.Context()).Return(81, nil)
	handler.seed(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"seeded": 81}`, w.Body.String())
}
