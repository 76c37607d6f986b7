package api

import (
	"net/http"

	"github.com/flyticket/flyticket/internal/service/cities"
	"github.com/gin-gonic/gin"
)

type CityHandler struct {
	service cities.CityUseCase
}

func NewCityHandler(service cities.CityUseCase) *CityHandler {
	return &CityHandler{service: service}
}

func (h *CityHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCityResponses(result))
}

func (h *CityHandler) seed(c *gin.Context) {
	n, err := h.service.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seeded": n})
}
