package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/garage-logbook/internal/auth"
	"github.com/ukydev/garage-logbook/internal/capture"
	"github.com/ukydev/garage-logbook/internal/config"
	"github.com/ukydev/garage-logbook/internal/db"
	"github.com/ukydev/garage-logbook/internal/garage"
	"github.com/ukydev/garage-logbook/internal/handlers"
	"github.com/ukydev/garage-logbook/internal/middleware"
	"github.com/ukydev/garage-logbook/internal/notify"
)

// app is the wired server, ready to run.
type app struct {
	router    http.Handler
	hub       *notify.Hub
	scheduler *notify.Scheduler
	garage    *garage.Service
}

// newApp wires the logbook over the given stores. broker may be nil, in which
// case reminders and alerts only go to the log and the websocket feed.
func newApp(cfg *config.Config, vehicles db.VehicleCollection, owners db.OwnerCollection, broker notify.Publisher) (*app, error) {
	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return nil, err
	}

	hub := notify.NewHub()
	sinks := &notify.Fanout{
		Notifiers:  []notify.Notifier{notify.LogNotifier{}, hub},
		Publishers: []notify.AlertPublisher{notify.LogNotifier{}, hub},
	}
	if broker != nil {
		m := notify.NewMQTTNotifier(broker, cfg.MQTTTopic)
		sinks.Notifiers = append(sinks.Notifiers, m)
		sinks.Publishers = append(sinks.Publishers, m)
	}

	scheduler := notify.NewScheduler(sinks, cfg.ReminderSweep)
	svc := garage.NewService(vehicles, owners, capture.NewMockScanner(), scheduler, sinks)

	rateLimiter := middleware.NewRateLimitMiddleware()
	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService, owners),
		handlers.NewGarageHandler(svc),
		hub.ServeWS,
		middleware.RequestLogger,
		rateLimiter.RateLimit(cfg.RateLimit, time.Minute),
		middleware.NewAuthMiddleware(authService).Authenticate,
	)

	return &app{router: router, hub: hub, scheduler: scheduler, garage: svc}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()
	log.Info("Connected to MongoDB successfully!")

	database := client.Database(cfg.MongoDB)
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	owners := &db.MongoOwnerCollection{Collection: database.Collection("owners")}

	var broker mqtt.Client
	if cfg.MQTTBroker != "" {
		broker, err = notify.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.WithError(err).Warn("MQTT unavailable, continuing without it")
		} else {
			defer broker.Disconnect(250)
			log.WithField("broker", cfg.MQTTBroker).Info("Connected to MQTT broker")
		}
	}

	var publisher notify.Publisher
	if broker != nil {
		publisher = broker
	}
	a, err := newApp(cfg, vehicles, owners, publisher)
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}

	go a.hub.Run(ctx)
	if err := a.scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Failed to start reminder scheduler")
	}
	defer a.scheduler.Stop()
	if _, err := a.garage.RestoreReminders(ctx); err != nil {
		log.WithError(err).Error("Failed to restore reminders")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
}
