package fireplus

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"fireplus_bridge/internal/models"
)

// Keys of the write endpoint form.
const (
	keyBurnRateMode  = "Betrieb"
	keyBurnRatePower = "Leistung"
	keyBrightness    = "Helligkeit"
	keyWebControls   = "Bedienung"
	keyLED           = "LED"
	keyEmberBurndown = "AB"
	keyVolume        = "Lautstaerke"
	keyCount         = "CNT"
)

// countModulus bounds the write sequence counter expected by v2 firmware.
const countModulus = 100

var errMissingCurrent = errors.New("current snapshot lacks a field required by its protocol version")

// Settings is a partial update. Nil fields keep their current value.
type Settings struct {
	Brightness    *int  `json:"brightness,omitempty"`
	Volume        *int  `json:"volume,omitempty"`
	EmberBurndown *bool `json:"ember_burndown,omitempty"`
	BurnRate      *int  `json:"burn_rate,omitempty"`
	LED           *bool `json:"led,omitempty"`
}

// Empty reports whether no field is set.
func (s Settings) Empty() bool {
	return s.Brightness == nil && s.Volume == nil && s.EmberBurndown == nil && s.BurnRate == nil && s.LED == nil
}

// BuildUpdate merges the requested settings onto the current snapshot and
// returns the complete form the write endpoint expects for the snapshot's
// protocol version. Settings the version does not carry are ignored.
func BuildUpdate(current models.Snapshot, s Settings) (url.Values, error) {
	p, err := protocolFor(current.Version)
	if err != nil {
		return nil, err
	}
	l := p.layout

	pair := p.burnRates.pair(valueOr(s.BurnRate, current.BurnRate))

	form := url.Values{}
	form.Set(keyBurnRateMode, strconv.Itoa(pair.Mode))
	form.Set(keyBurnRatePower, strconv.Itoa(pair.Power))
	form.Set(keyBrightness, strconv.Itoa(valueOr(s.Brightness, current.Brightness)))
	form.Set(keyWebControls, digit(current.WebControlsShown))
	form.Set(keyEmberBurndown, digit(valueOr(s.EmberBurndown, current.EmberBurndown)))

	if l.led != absent {
		led, err := merged(s.LED, current.LED, keyLED)
		if err != nil {
			return nil, err
		}
		form.Set(keyLED, digit(led))
	}
	if l.volume != absent {
		volume, err := merged(s.Volume, current.Volume, keyVolume)
		if err != nil {
			return nil, err
		}
		form.Set(keyVolume, strconv.Itoa(volume))
	}
	if l.count != absent {
		if current.Count == nil {
			return nil, fmt.Errorf("%s: %w", keyCount, errMissingCurrent)
		}
		form.Set(keyCount, strconv.Itoa(NextCount(*current.Count)))
	}
	return form, nil
}

// NextCount returns the sequence counter value for the next write.
func NextCount(count int) int {
	return ((count+1)%countModulus + countModulus) % countModulus
}

func valueOr[T any](requested *T, current T) T {
	if requested != nil {
		return *requested
	}
	return current
}

func merged[T any](requested, current *T, key string) (T, error) {
	if requested != nil {
		return *requested, nil
	}
	if current == nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", key, errMissingCurrent)
	}
	return *current, nil
}

func digit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
