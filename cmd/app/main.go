package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flyticket/flyticket/api"
	"github.com/flyticket/flyticket/config"
	"github.com/flyticket/flyticket/internal/bootstrap"
	"github.com/flyticket/flyticket/internal/cache"
	"github.com/flyticket/flyticket/internal/kafka"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/service/admin"
	"github.com/flyticket/flyticket/internal/service/cities"
	"github.com/flyticket/flyticket/internal/service/flights"
	"github.com/flyticket/flyticket/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log, err := logging.New(cfg.Log, nil)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer stores.Close()

	var (
		flightCache flights.FlightCache
		cityCache   cities.CityCache
		invalidator tickets.ListInvalidator
	)
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Flights.ListCacheTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, cache reads will fall back to the database")
		}
		flightCache, cityCache, invalidator = redisCache, redisCache, redisCache
	}

	ticketOpts := []tickets.TicketServiceOption{
		tickets.WithCodePrefix(cfg.Tickets.CodePrefix, cfg.Tickets.MaxCodeAttempts),
		tickets.WithLogger(log),
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("kafka unreachable, ticket events will be dropped until it recovers")
		}
		ticketOpts = append(ticketOpts,
			tickets.WithEvents(producer, cfg.Kafka.TicketEventsTopic),
			tickets.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	flightService := flights.NewFlightService(stores.Flights, stores.Cities, flightCache,
		flights.WithLocation(cfg.Schedule.Location()),
		flights.WithRejectBookedDelete(cfg.Flights.DeletePolicy == config.DeletePolicyRejectBooked),
		flights.WithLogger(log),
	)
	ticketService := tickets.NewTicketService(stores.Tickets, stores.Flights, invalidator, ticketOpts...)
	cityService := cities.NewCityService(stores.Cities, cityCache, log)
	adminService := admin.NewAdminService(stores.Admins, stores.Stats, admin.Config{
		Secret:     cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL(),
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)

	// The memory driver starts empty on every boot.
	if cfg.Database.Driver == config.DriverMemory {
		if _, err := cityService.Seed(ctx); err != nil {
			log.WithError(err).Fatal("seed cities")
		}
	}
	if cfg.Auth.SeedAdminUsername != "" {
		created, err := adminService.EnsureAdmin(ctx, cfg.Auth.SeedAdminUsername, cfg.Auth.SeedAdminPassword)
		if err != nil {
			log.WithError(err).Fatal("seed admin")
		}
		if created {
			log.WithField("username", cfg.Auth.SeedAdminUsername).Info("created seed admin")
		}
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var db api.Pinger
	if stores.Pool != nil {
		db = stores.Pool
	}
	router := api.NewRouter(log, adminService, db, api.Handlers{
		Flights: api.NewFlightHandler(flightService),
		Tickets: api.NewTicketHandler(ticketService),
		Cities:  api.NewCityHandler(cityService),
		Admin:   api.NewAdminHandler(adminService),
	})

	if err := bootstrap.Run(ctx, bootstrap.NewServer(cfg.HTTP, router), log); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
