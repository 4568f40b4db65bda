package observer

import (
	"errors"
	"fmt"
)

// Observer-specific errors
var (
	// ErrConfiguration is returned for an unsupported body or a capability the body lacks
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidLocation is returned when coordinates are off the globe
	ErrInvalidLocation = fmt.Errorf("%w: invalid location", ErrConfiguration)
)
