package main

import (
	"context"
	"os"

	"github.com/flyticket/flyticket/config"
	"github.com/flyticket/flyticket/internal/cache"
	"github.com/flyticket/flyticket/internal/bootstrap"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/service/admin"
	"github.com/flyticket/flyticket/internal/service/cities"
	"github.com/sirupsen/logrus"
)

// seed applies the schema, loads the province list and creates the configured
// admin account. Safe to run repeatedly.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver == config.DriverMemory {
		logrus.Fatal("seed needs the postgres driver")
	}

	log, err := logging.New(cfg.Log, nil)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer stores.Close()

	// The running app caches the city and flight lists, so seeding must drop them.
	var cityCache cities.CityCache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Flights.ListCacheTTL())
		defer redisCache.Close()
		cityCache = redisCache
	}

	n, err := cities.NewCityService(stores.Cities, cityCache, log).Seed(ctx)
	if err != nil {
		log.WithError(err).Fatal("seed cities")
	}
	log.WithField("cities", n).Info("cities seeded")

	if cfg.Auth.SeedAdminUsername == "" {
		log.Info("no seed admin configured")
		return
	}
	adminService := admin.NewAdminService(stores.Admins, stores.Stats, admin.Config{
		Secret:     cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL(),
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)
	created, err := adminService.EnsureAdmin(ctx, cfg.Auth.SeedAdminUsername, cfg.Auth.SeedAdminPassword)
	if err != nil {
		log.WithError(err).Fatal("seed admin")
	}
	log.WithFields(logrus.Fields{"username": cfg.Auth.SeedAdminUsername, "created": created}).Info("admin seeded")
}
