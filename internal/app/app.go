// Package app wires repositories, services and handlers into a Fiber app.
package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/handlers"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/notify"
	"yamdb/internal/repositories"
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenDB connects to the database named by driver ("sqlite" or "postgres").
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema of every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.EmailVerification{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes, as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code == fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

// New builds the HTTP application on db. A nil notifier disables
// confirmation-code delivery. When cfg names a superuser it is created or
// promoted before the app is returned.
func New(cfg config.Config, db *gorm.DB, notifier notify.Notifier) (*fiber.App, *services.AuthService, error) {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	verifyRepo := repositories.NewGORMVerificationRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	genreRepo := repositories.NewGORMGenreRepository(db)
	titleRepo := repositories.NewGORMTitleRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	commentRepo := repositories.NewGORMCommentRepository(db)

	// --- Services ---
	authOpts := []services.AuthOption{}
	if cfg.TokenTTL > 0 {
		authOpts = append(authOpts, services.WithTokenDuration(cfg.TokenTTL))
	}
	if cfg.NotifyTimeout > 0 {
		authOpts = append(authOpts, services.WithNotifyTimeout(cfg.NotifyTimeout))
	}
	authService := services.NewAuthService(userRepo, verifyRepo, notifier, cfg.JWTSecret, authOpts...)
	userService := services.NewUserService(userRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	genreService := services.NewGenreService(genreRepo)
	titleService := services.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := services.NewReviewService(reviewRepo, titleRepo)
	commentService := services.NewCommentService(commentRepo, reviewRepo)

	if cfg.SuperuserUsername != "" {
		if _, err := userService.EnsureSuperuser(cfg.SuperuserUsername, cfg.SuperuserEmail); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap superuser: %w", err)
		}
	}

	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = 5
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, pageSize)
	categoryHandler := handlers.NewCategoryHandler(categoryService, pageSize)
	genreHandler := handlers.NewGenreHandler(genreService, pageSize)
	titleHandler := handlers.NewTitleHandler(titleService, pageSize)
	reviewHandler := handlers.NewReviewHandler(reviewService, commentService, pageSize)

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "degraded",
				"time":     time.Now().Format(time.RFC3339),
				"database": "unreachable",
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "connected",
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Authenticate(authService))
	authHandler.RegisterRoutes(apiV1, middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst))
	userHandler.RegisterRoutes(apiV1)
	categoryHandler.RegisterRoutes(apiV1)
	genreHandler.RegisterRoutes(apiV1)
	titleHandler.RegisterRoutes(apiV1)
	reviewHandler.RegisterRoutes(apiV1)

	return app, authService, nil
}
