package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	"github.com/ethpandaops/orb/pkg/observability"
	"github.com/ethpandaops/orb/pkg/orb"
)

// setupMiddleware configures global middleware for the Fiber app
func setupMiddleware(app *fiber.App, cfg *Config, quiet bool) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.New().String() },
	}))

	if !quiet {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${respHeader:X-Request-ID} ${status} - ${method} ${path} (${latency})\n",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.origins(),
		AllowMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))
}

// errorHandler provides consistent error responses
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, orb.ErrConfiguration):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, orb.ErrNoEventFound):
		code = fiber.StatusNotFound
		message = err.Error()
	}

	if code >= fiber.StatusInternalServerError {
		observability.RecordError("api", "internal")
	}

	return c.Status(code).JSON(fiber.Map{
		"error":     message,
		"code":      code,
		"requestId": requestid.FromContext(c),
	})
}
