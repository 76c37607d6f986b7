package api

import (
	"net/http"

	"github.com/flyticket/flyticket/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type issueTicketRequest struct {
	FlightID         int64  `json:"flight_id"`
	PassengerName    string `json:"passenger_name"`
	PassengerSurname string `json:"passenger_surname"`
	PassengerEmail   string `json:"passenger_email"`
	SeatNumber       string `json:"seat_number"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	router.POST("", h.issue)
	router.GET("/:code", h.getByCode)
	router.GET("", adminOnly, h.list)
	router.DELETE("/:id", adminOnly, h.cancel)
}

func (h *TicketHandler) issue(c *gin.Context) {
	var req issueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	ticket, err := h.service.Issue(c.Request.Context(), tickets.IssueInput{
		FlightID:         req.FlightID,
		PassengerName:    req.PassengerName,
		PassengerSurname: req.PassengerSurname,
		PassengerEmail:   req.PassengerEmail,
		SeatNumber:       req.SeatNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTicketResponse(*ticket, 0))
}

func (h *TicketHandler) getByCode(c *gin.Context) {
	ticket, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponse(*ticket, 0))
}

func (h *TicketHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTicketResponses(result))
}

func (h *TicketHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelResponse{
		Ticket:         toTicketResponse(res.Ticket, 0),
		FlightFound:    res.FlightFound,
		SeatsAvailable: res.SeatsAvailable,
	})
}
