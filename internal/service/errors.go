package service

import (
	"errors"
	"fmt"
)

// ErrNoSnapshot is returned before the first successful poll.
var ErrNoSnapshot = errors.New("no snapshot available yet")

// ErrInvalidSettings is wrapped by every settings validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

var (
	errNoSettings        = fmt.Errorf("%w: at least one setting is required", ErrInvalidSettings)
	errBrightnessRange   = fmt.Errorf("%w: brightness must be between 0 and 100", ErrInvalidSettings)
	errVolumeRange       = fmt.Errorf("%w: volume must be between 0 and 100", ErrInvalidSettings)
	errVolumeUnsupported = fmt.Errorf("%w: volume is not available on this controller", ErrInvalidSettings)
	errLEDUnsupported    = fmt.Errorf("%w: led is not available on this controller", ErrInvalidSettings)
)
