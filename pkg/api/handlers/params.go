package handlers

import (
	"time"

	"github.com/creasty/defaults"
	"github.com/gofiber/fiber/v3"

	"github.com/ethpandaops/orb/pkg/orb"
)

// EventParams are the query parameters of an event request. A zero DT
// resolves to now.
type EventParams struct {
	Cached       bool      `query:"cached" default:"true"`
	Center       bool      `query:"center" default:"true"`
	DegreeOffset float64   `query:"degreeOffset"`
	MinuteOffset float64   `query:"minuteOffset"`
	DT           time.Time `query:"dt"`
}

// Request converts the parameters into an orb request
func (p EventParams) Request() orb.Request {
	return orb.Request{
		DegreeOffset: p.DegreeOffset,
		MinuteOffset: p.MinuteOffset,
		UseCenter:    p.Center,
		Cached:       p.Cached,
		At:           p.DT,
	}
}

// PositionParams are the query parameters of a position request
type PositionParams struct {
	MinuteOffset float64   `query:"minuteOffset"`
	Degrees      bool      `query:"degrees" default:"true"`
	DT           time.Time `query:"dt"`
}

// LunarParams are the query parameters of a phase or light request
type LunarParams struct {
	MinuteOffset float64   `query:"minuteOffset"`
	DT           time.Time `query:"dt"`
}

// bindQuery fills params with its defaults and then the query string
func bindQuery(c fiber.Ctx, params any) error {
	if err := defaults.Set(params); err != nil {
		return err
	}

	if err := c.Bind().Query(params); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query: "+err.Error())
	}

	return nil
}
