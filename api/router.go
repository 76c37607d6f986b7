package api

import (
	"context"
	"net/http"

	"github.com/flyticket/flyticket/internal/service/admin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Flights *FlightHandler
	Tickets *TicketHandler
	Cities  *CityHandler
	Admin   *AdminHandler
}

// NewRouter mounts every route under /api. db may be nil.
func NewRouter(log logrus.FieldLogger, auth admin.Authenticator, db Pinger, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	adminOnly := AdminAuth(auth)
	api := router.Group("/api")

	api.GET("/health", health(db))
	api.GET("/cities", h.Cities.list)

	h.Flights.Register(api.Group("/flights"), adminOnly)
	h.Tickets.Register(api.Group("/tickets"), adminOnly)

	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", h.Admin.login)
	adminGroup.GET("/verify", adminOnly, h.Admin.verify)
	adminGroup.GET("/stats", adminOnly, h.Admin.stats)
	adminGroup.POST("/register", adminOnly, h.Admin.register)
	adminGroup.POST("/seed-cities", adminOnly, h.Cities.seed)

	return router
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
