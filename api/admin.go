package api

import (
	"net/http"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/service/admin"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service admin.AdminUseCase
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	Admin     adminResponse `json:"admin"`
}

func NewAdminHandler(service admin.AdminUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     token.AccessToken,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
		Admin:     adminResponse{ID: token.Admin.ID, Username: token.Admin.Username},
	})
}

func (h *AdminHandler) verify(c *gin.Context) {
	a := currentAdmin(c)
	c.JSON(http.StatusOK, gin.H{"admin": adminResponse{ID: a.ID, Username: a.Username}})
}

func (h *AdminHandler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	a, err := h.service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"admin": adminResponse{ID: a.ID, Username: a.Username}})
}

func (h *AdminHandler) stats(c *gin.Context) {
	s, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		TotalFlights:      s.TotalFlights,
		TotalBookings:     s.TotalBookings,
		RecentBookings:    s.RecentBookings,
		TotalRevenueCents: s.TotalRevenueCents,
	})
}

func currentAdmin(c *gin.Context) domain.Admin {
	if v, ok := c.Get(adminContextKey); ok {
		if a, ok := v.(*domain.Admin); ok {
			return *a
		}
	}
	return domain.Admin{}
}
