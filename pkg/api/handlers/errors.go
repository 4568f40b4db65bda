package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/ethpandaops/orb/pkg/orb"
)

// ErrObserverNotFound is returned when no observer has the requested name
var ErrObserverNotFound = fiber.NewError(fiber.StatusNotFound, "observer not found")

// ErrUnknownEvent is returned for an event other than noon, midnight, rise or set
var ErrUnknownEvent = fiber.NewError(fiber.StatusBadRequest, "unknown event, expected noon, midnight, rise or set")

// translate maps query errors to HTTP errors
func translate(err error) error {
	switch {
	case errors.Is(err, orb.ErrObserverNotFound):
		return ErrObserverNotFound
	case errors.Is(err, orb.ErrConfiguration):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, orb.ErrNoEventFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
