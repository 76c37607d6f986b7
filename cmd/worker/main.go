package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flyticket/flyticket/config"
	"github.com/flyticket/flyticket/internal/bootstrap"
	"github.com/flyticket/flyticket/internal/email"
	"github.com/flyticket/flyticket/internal/kafka"
	"github.com/flyticket/flyticket/internal/logging"
	"github.com/flyticket/flyticket/internal/service/tickets"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
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

	ticketService := tickets.NewTicketService(stores.Tickets, stores.Flights, nil, tickets.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
		defer consumer.Close()
		sender := email.NewSender(log)

		g.Go(func() error {
			return consumer.ConsumeTicketEvents(ctx, sender.Send)
		})
	} else {
		log.Info("kafka disabled, notification consumer not started")
	}

	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.Worker.AuditIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				found, err := ticketService.AuditSeats(ctx)
				if err != nil {
					log.WithError(err).Error("seat audit failed")
					continue
				}
				log.WithField("discrepancies", len(found)).Info("seat audit finished")
			case <-ctx.Done():
				return nil
			}
		}
	})

	log.Info("worker started")
	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("worker stopped")
	}
	log.Info("worker stopped")
}
