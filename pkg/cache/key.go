package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the type of event an entry holds
type Kind int

const (
	// KindTransit is the upper meridian passage
	KindTransit Kind = iota + 1
	// KindAntitransit is the lower meridian passage, hour angle 180 degrees
	KindAntitransit
	// KindRising is an ascending crossing of an altitude
	KindRising
	// KindSetting is a descending crossing of an altitude
	KindSetting
)

// String returns the kind name used in logs, metrics and the API
func (k Kind) String() string {
	switch k {
	case KindTransit:
		return "transit"
	case KindAntitransit:
		return "antitransit"
	case KindRising:
		return "rising"
	case KindSetting:
		return "setting"
	default:
		return "unknown"
	}
}

// HasHorizon reports whether entries of this kind are partitioned by horizon
func (k Kind) HasHorizon() bool {
	return k == KindRising || k == KindSetting
}

// ParseKind maps a kind name to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "transit":
		return KindTransit, nil
	case "antitransit":
		return KindAntitransit, nil
	case "rising":
		return KindRising, nil
	case "setting":
		return KindSetting, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Key identifies one cache entry
type Key struct {
	Kind      Kind
	Offset    float64
	UpperLimb bool
}

// NewKey builds a key; offset and limb only apply to risings and settings
func NewKey(kind Kind, offset float64, upperLimb bool) Key {
	if !kind.HasHorizon() {
		return Key{Kind: kind}
	}

	// fold -0 into 0 so both address the same entry
	if offset == 0 {
		offset = 0
	}

	return Key{Kind: kind, Offset: offset, UpperLimb: upperLimb}
}

// String renders the key, e.g. "rising@-6" or "setting@0/limb"
func (k Key) String() string {
	if !k.Kind.HasHorizon() {
		return k.Kind.String()
	}

	s := k.Kind.String() + "@" + strconv.FormatFloat(k.Offset, 'f', -1, 64)
	if k.UpperLimb {
		s += "/limb"
	}

	return s
}
