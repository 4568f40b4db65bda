package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ethpandaops/orb/pkg/cache"
	"github.com/ethpandaops/orb/pkg/observer"
	"github.com/ethpandaops/orb/pkg/orb"
)

// ObserverSummary describes one configured observer
type ObserverSummary struct {
	Name     string            `json:"name"`
	Body     string            `json:"body"`
	Location observer.Location `json:"location"`
}

// EventResponse is the answer to an event query
type EventResponse struct {
	Observer     string    `json:"observer"`
	Body         string    `json:"body"`
	Event        string    `json:"event"`
	Cached       bool      `json:"cached"`
	DegreeOffset float64   `json:"degreeOffset"`
	MinuteOffset float64   `json:"minuteOffset"`
	Center       bool      `json:"center"`
	Time         time.Time `json:"time"`
}

// PositionResponse is the apparent position of the body
type PositionResponse struct {
	Observer string    `json:"observer"`
	Body     string    `json:"body"`
	At       time.Time `json:"at"`
	Unit     string    `json:"unit"`
	Azimuth  float64   `json:"azimuth"`
	Altitude float64   `json:"altitude"`
}

// LunarResponse carries the phase octant or the illuminated percentage
type LunarResponse struct {
	Observer string    `json:"observer"`
	At       time.Time `json:"at"`
	Value    int       `json:"value"`
}

// CacheResponse lists the event cache entries of one observer
type CacheResponse struct {
	Observer string             `json:"observer"`
	MaxSize  int                `json:"maxSize"`
	Entries  []cache.EntryStats `json:"entries"`
}

// ListObservers handles GET /api/v1/observers
func (s *Server) ListObservers(c fiber.Ctx) error {
	summaries := make([]ObserverSummary, 0, s.registry.Len())

	for _, o := range s.registry.All() {
		obs := o.Observer()
		summaries = append(summaries, ObserverSummary{
			Name:     obs.Name(),
			Body:     obs.Body().String(),
			Location: obs.Location(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"observers": summaries,
		"total":     len(summaries),
	})
}

// GetEvent handles GET /api/v1/observers/:name/:event
func (s *Server) GetEvent(c fiber.Ctx) error {
	o, err := s.orb(c)
	if err != nil {
		return err
	}

	event, err := orb.ParseEvent(c.Params("event"))
	if err != nil {
		return ErrUnknownEvent
	}

	var params EventParams
	if err = bindQuery(c, &params); err != nil {
		return err
	}

	req := params.Request()

	next, err := o.Lookup(c.Context(), event, req)
	if err != nil {
		return translate(err)
	}

	return c.Status(fiber.StatusOK).JSON(EventResponse{
		Observer:     o.Observer().Name(),
		Body:         o.Observer().Body().String(),
		Event:        event.String(),
		Cached:       req.Cached,
		DegreeOffset: req.DegreeOffset,
		MinuteOffset: req.MinuteOffset,
		Center:       req.UseCenter,
		Time:         next,
	})
}

// GetPosition handles GET /api/v1/observers/:name/position
func (s *Server) GetPosition(c fiber.Ctx) error {
	o, err := s.orb(c)
	if err != nil {
		return err
	}

	var params PositionParams
	if err = bindQuery(c, &params); err != nil {
		return err
	}

	at := instant(params.DT)

	pos, err := o.Pos(c.Context(), params.MinuteOffset, params.Degrees, at)
	if err != nil {
		return translate(err)
	}

	unit := "radians"
	if params.Degrees {
		unit = "degrees"
	}

	return c.Status(fiber.StatusOK).JSON(PositionResponse{
		Observer: o.Observer().Name(),
		Body:     o.Observer().Body().String(),
		At:       at.Add(minutes(params.MinuteOffset)),
		Unit:     unit,
		Azimuth:  pos.Azimuth,
		Altitude: pos.Altitude,
	})
}

// GetPhase handles GET /api/v1/observers/:name/phase
func (s *Server) GetPhase(c fiber.Ctx) error {
	return s.lunar(c, (*orb.Lunar).Phase)
}

// GetLight handles GET /api/v1/observers/:name/light
func (s *Server) GetLight(c fiber.Ctx) error {
	return s.lunar(c, (*orb.Lunar).Light)
}

func (s *Server) lunar(c fiber.Ctx, query func(*orb.Lunar, context.Context, float64, time.Time) (int, error)) error {
	o, err := s.orb(c)
	if err != nil {
		return err
	}

	moon, err := o.Moon()
	if err != nil {
		return translate(err)
	}

	var params LunarParams
	if err = bindQuery(c, &params); err != nil {
		return err
	}

	at := instant(params.DT)

	value, err := query(moon, c.Context(), params.MinuteOffset, at)
	if err != nil {
		return translate(err)
	}

	return c.Status(fiber.StatusOK).JSON(LunarResponse{
		Observer: o.Observer().Name(),
		At:       at.Add(minutes(params.MinuteOffset)),
		Value:    value,
	})
}

// GetCache handles GET /api/v1/observers/:name/cache
func (s *Server) GetCache(c fiber.Ctx) error {
	o, err := s.orb(c)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(CacheResponse{
		Observer: o.Observer().Name(),
		MaxSize:  o.Cache().Config().MaxSize,
		Entries:  o.Cache().Stats(),
	})
}

// PurgeCache handles DELETE /api/v1/observers/:name/cache
func (s *Server) PurgeCache(c fiber.Ctx) error {
	o, err := s.orb(c)
	if err != nil {
		return err
	}

	o.Cache().Purge()

	s.log.WithField("observer", o.Observer().Name()).Info("Purged event cache")

	return c.SendStatus(fiber.StatusNoContent)
}

// instant resolves the dt parameter, defaulting to now so the response can
// echo the instant used
func instant(dt time.Time) time.Time {
	if dt.IsZero() {
		dt = time.Now()
	}

	return dt.UTC()
}

func minutes(offset float64) time.Duration {
	return time.Duration(offset * float64(time.Minute))
}
