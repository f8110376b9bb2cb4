package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthtracker/internal/app"
	"healthtracker/internal/cache"
	"healthtracker/internal/config"
	"healthtracker/internal/repositories"
	"healthtracker/internal/services"
	"healthtracker/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// --- Initialize Storage ---
	store, err := repositories.Open(startCtx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}

	// --- Optional Integrations ---
	// Left as nil interfaces when not configured so the services skip them.
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		publisher = mqClient
	}

	var trackCache services.TrackCache
	var redisCache *cache.RedisTrackCache
	if cfg.RedisAddr != "" {
		redisCache, err = cache.NewRedisTrackCache(startCtx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis cache: %v", err)
		}
		trackCache = redisCache
	}

	// --- Initialize Fiber App ---
	server, _ := app.New(store, app.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTTTL,
		Publisher: publisher,
		Cache:     trackCache,
		Logging:   true,
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on %s (storage: %s)", cfg.Addr(), cfg.Storage.Driver)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Listen(cfg.Addr()); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := store.Close(closeCtx); err != nil {
		log.Printf("Error closing storage: %v", err)
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Printf("Error closing Redis: %v", err)
		}
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Printf("Error closing RabbitMQ: %v", err)
		}
	}

	log.Println("Server gracefully stopped")
}
