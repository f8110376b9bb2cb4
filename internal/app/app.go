package app

import (
	"time"

	"healthtracker/internal/handlers"
	"healthtracker/internal/repositories"
	"healthtracker/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Options carries the app's secrets and optional integrations.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	Publisher services.EventPublisher // nil disables change events
	Cache     services.TrackCache     // nil disables list caching
	Logging   bool                    // per-request access log
}

// New wires services and handlers over store and returns the Fiber app
// together with its AuthService.
func New(store *repositories.Store, opts Options) (*fiber.App, *services.AuthService) {
	validate := validator.New()

	// --- Initialize Services ---
	authService := services.NewAuthService(store.Users, opts.JWTSecret, opts.TokenTTL)
	trackService := services.NewTrackService(store.Tracks, opts.Publisher, opts.Cache)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, validate)
	trackHandler := handlers.NewTrackHandler(trackService, authService, validate)

	app := fiber.New(fiber.Config{AppName: "healthtracker"})

	// --- Middleware ---
	app.Use(recover.New())
	if opts.Logging {
		app.Use(logger.New()) // Request logger
	}
	app.Use(cors.New(cors.Config{AllowOrigins: "*"}))

	// --- Routes ---
	authHandler.RegisterRoutes(app)
	trackHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, authService
}
