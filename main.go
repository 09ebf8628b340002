package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"leadboard/config"
	"leadboard/middleware"
	"leadboard/routes"
	"leadboard/utils"
	"leadboard/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "LEADBOARD: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry if configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Event hub fans board changes out to websocket subscribers per unit
	hub := utils.NewEventHub()

	// Initialize and start the follow-up worker
	followupWorker := worker.NewFollowupWorker(config.DB, hub, log.New(os.Stdout, "FOLLOWUP: ", log.LstdFlags), config.AppConfig.FollowupInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go followupWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, hub)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
