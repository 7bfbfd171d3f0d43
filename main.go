package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"writedesk/config"
	"writedesk/middleware"
	"writedesk/notify"
	"writedesk/routes"
	"writedesk/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "WRITEDESK: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry when a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// The relay hub and dispatcher are built once here and passed by
	// reference to everything that pushes.
	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(config.DB, hub, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))

	// Initialize and start the deadline reminder worker
	deadlineWorker := worker.NewDeadlineWorker(
		config.DB,
		dispatcher,
		log.New(os.Stdout, "DEADLINE: ", log.LstdFlags),
		time.Duration(config.AppConfig.ReminderSweepMinutes)*time.Minute,
		time.Duration(config.AppConfig.ReminderWindowHours)*time.Hour,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deadlineWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, hub, dispatcher)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
