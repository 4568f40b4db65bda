package orb

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethpandaops/orb/pkg/cache"
)

// Event names the daily events an Orb resolves
type Event int

const (
	// EventUnknown is the zero value
	EventUnknown Event = iota
	// EventNoon is the meridian transit
	EventNoon
	// EventMidnight is the antitransit
	EventMidnight
	// EventRise is an ascending crossing of the horizon
	EventRise
	// EventSet is a descending crossing of the horizon
	EventSet
)

// Events lists every resolvable event in display order
func Events() []Event {
	return []Event{EventNoon, EventMidnight, EventRise, EventSet}
}

// String returns the event name
func (e Event) String() string {
	switch e {
	case EventNoon:
		return "noon"
	case EventMidnight:
		return "midnight"
	case EventRise:
		return "rise"
	case EventSet:
		return "set"
	default:
		return "unknown"
	}
}

// Kind returns the cache kind backing the event
func (e Event) Kind() cache.Kind {
	switch e {
	case EventNoon:
		return cache.KindTransit
	case EventMidnight:
		return cache.KindAntitransit
	case EventRise:
		return cache.KindRising
	case EventSet:
		return cache.KindSetting
	default:
		return 0
	}
}

// ParseEvent maps an event name to an Event. Transit and antitransit are
// accepted as aliases.
func ParseEvent(name string) (Event, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noon", "transit":
		return EventNoon, nil
	case "midnight", "antitransit":
		return EventMidnight, nil
	case "rise", "rising", "sunrise", "moonrise":
		return EventRise, nil
	case "set", "setting", "sunset", "moonset":
		return EventSet, nil
	default:
		return EventUnknown, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

// Request carries the arguments of a Lookup
type Request struct {
	// Cached serves the event from the event cache
	Cached bool
	// DegreeOffset is the horizon offset for rise and set
	DegreeOffset float64
	// MinuteOffset shifts the result
	MinuteOffset float64
	// UseCenter measures the disc centre instead of the upper limb
	UseCenter bool
	// At is the reference time; zero means now
	At time.Time
}
