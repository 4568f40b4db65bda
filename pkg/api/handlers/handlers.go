// Package handlers implements the request handlers of the orb API
package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/orb/pkg/orb"
)

// Server answers API requests from the orbs in a registry
type Server struct {
	registry *orb.Registry
	log      logrus.FieldLogger
}

// NewServer creates a new API server instance
func NewServer(registry *orb.Registry, log logrus.FieldLogger) *Server {
	return &Server{
		registry: registry,
		log:      log.WithField("component", "api.handlers"),
	}
}

// Register mounts every route on router
func (s *Server) Register(router fiber.Router) {
	router.Get("/observers", s.ListObservers)

	observers := router.Group("/observers/:name")
	observers.Get("/position", s.GetPosition)
	observers.Get("/phase", s.GetPhase)
	observers.Get("/light", s.GetLight)
	observers.Get("/cache", s.GetCache)
	observers.Delete("/cache", s.PurgeCache)
	observers.Get("/:event", s.GetEvent)
}

func (s *Server) orb(c fiber.Ctx) (*orb.Orb, error) {
	o, err := s.registry.Get(c.Params("name"))
	if err != nil {
		return nil, translate(err)
	}

	return o, nil
}
