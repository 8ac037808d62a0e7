package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/pulsechat/pulse/internal/api"
	"github.com/pulsechat/pulse/internal/config"
	"github.com/pulsechat/pulse/internal/database"
	"github.com/pulsechat/pulse/internal/events"
	"github.com/pulsechat/pulse/internal/repositories"
	"github.com/pulsechat/pulse/internal/services"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database connections
	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	defer postgresPool.Close()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	nc, err := database.ConnectNATS(cfg.NatsURL, "pulse")
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	// Event bus
	producer, err := events.NewProducer(ctx, nc)
	if err != nil {
		log.Fatalf("Failed to create event producer: %v", err)
	}

	// Repositories and services
	presenceStore := repositories.NewPostgresPresenceStore(postgresPool)
	presenceCache := repositories.NewRedisPresenceCache(redisClient, cfg.PresenceTTL)
	notificationRepo := repositories.NewPostgresNotificationRepository(postgresPool)

	presenceService := services.NewPresenceService(presenceStore, presenceCache, producer)
	notificationService := services.NewNotificationService(notificationRepo)

	// Consumer: all handlers register before the consumer starts pulling.
	dispatcher := events.NewDispatcher()
	services.NewEventHandlers(notificationRepo, producer).Register(dispatcher)

	consumer, err := events.NewConsumer(ctx, nc, cfg.ConsumerGroup, dispatcher)
	if err != nil {
		log.Fatalf("Failed to create event consumer: %v", err)
	}
	if err := consumer.Start(ctx,
		events.TopicMessageCreated,
		events.TopicMessageUpdated,
		events.TopicPresenceUpdated,
	); err != nil {
		log.Fatalf("Failed to start event consumer: %v", err)
	}

	// HTTP server
	router := api.NewRouter(cfg.JWTSecret,
		api.NewPresenceHandler(presenceService),
		api.NewNotificationHandler(notificationService),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)

		// Stop pulling events, then drain in-flight publishes.
		consumer.Stop()
		nc.Drain()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
