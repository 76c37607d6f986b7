package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/flyticket/flyticket/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	FlightCode     string    `json:"flight_code"`
	FromCityID     int64     `json:"from_city_id"`
	ToCityID       int64     `json:"to_city_id"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	PriceCents     int64     `json:"price_cents"`
	SeatsTotal     int       `json:"seats_total"`
	SeatsAvailable *int      `json:"seats_available"`
}

type updateFlightRequest struct {
	FlightCode    *string    `json:"flight_code"`
	FromCityID    *int64     `json:"from_city_id"`
	ToCityID      *int64     `json:"to_city_id"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	PriceCents    *int64     `json:"price_cents"`
	SeatsTotal    *int       `json:"seats_total"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.POST("", adminOnly, h.create)
	router.PUT("/:id", adminOnly, h.update)
	router.DELETE("/:id", adminOnly, h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(result))
}

func (h *FlightHandler) search(c *gin.Context) {
	from, ok := queryID(c, "from")
	if !ok {
		return
	}
	to, ok := queryID(c, "to")
	if !ok {
		return
	}

	result, err := h.service.Search(c.Request.Context(), flights.SearchInput{FromCityID: from, ToCityID: to, Date: c.Query("date")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(result))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight, 0))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	flight, err := h.service.Create(c.Request.Context(), flights.CreateInput{
		FlightCode:     req.FlightCode,
		FromCityID:     req.FromCityID,
		ToCityID:       req.ToCityID,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		PriceCents:     req.PriceCents,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsAvailable,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*flight, 0))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, flights.UpdateInput{
		FlightCode:    req.FlightCode,
		FromCityID:    req.FromCityID,
		ToCityID:      req.ToCityID,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		PriceCents:    req.PriceCents,
		SeatsTotal:    req.SeatsTotal,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight, 0))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id", "must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryID parses a required numeric query parameter.
func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		badRequest(c, name, "is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name, "must be a positive integer")
		return 0, false
	}
	return id, true
}
