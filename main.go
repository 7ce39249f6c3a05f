package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"todo/internal/config"
	"todo/internal/credentials"
	"todo/internal/database"
	"todo/internal/handlers"
	"todo/internal/logger"
	"todo/internal/middleware"
	"todo/internal/models"
	"todo/internal/repositories"
	"todo/internal/services"
	"todo/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		log.Printf("Failed to load configuration: %v", err)
		return err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if _, err := database.Migrate(context.Background(), db); err != nil {
		return err
	}

	// --- Domain events ---
	var events services.EventPublisher
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, domain events disabled")
	} else {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return err
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				logger.Error("failed to close RabbitMQ client", "error", err)
			}
		}()

		if err := mqClient.ConsumeEvents(rabbitmq.LogActivity); err != nil {
			logger.Warn("failed to start activity consumer", "error", err)
		}
		events = mqClient
	}

	app := NewApp(cfg, db, events)

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.AppPort, "db_driver", cfg.Database.Driver)
		serverErr <- app.Listen(cfg.AppPort)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("error during server shutdown", "error", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}

// NewApp builds the HTTP surface. events may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, events services.EventPublisher) *fiber.App {
	tokens := credentials.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)

	// One repository per entity, shared by every request.
	userRepo := repositories.NewGORMRepository[models.User](db, "user")
	taskRepo := repositories.NewGORMRepository[models.Task](db, "task")

	userService := services.NewUserService(userRepo, tokens, events)
	taskService := services.NewTaskService(taskRepo, events)

	app := fiber.New(fiber.Config{
		AppName:               "todo",
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	// --- Middleware ---
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	// Inside the logger so a panic is still logged with its final status.
	app.Use(fiberrecover.New())

	// --- Health Check Endpoint ---
	app.Get("/health", healthCheck(db))

	// --- API Routes ---
	handlers.NewUserHandler(userService, tokens).RegisterRoutes(app)
	handlers.NewTaskHandler(taskService, tokens).RegisterRoutes(app)

	return app
}

func healthCheck(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status, code, dbState := "healthy", fiber.StatusOK, "up"
		if err := database.Ping(ctx, db); err != nil {
			logger.ErrorContext(ctx, "database ping failed", "error", err)
			status, code, dbState = "unhealthy", fiber.StatusServiceUnavailable, "down"
		}

		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"database": dbState,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}
