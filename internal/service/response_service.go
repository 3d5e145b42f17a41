package service

import (
	"time"

	"fireplus_bridge/internal/fireplus"
)

// SettingsParams is a partial settings change. Nil fields are left as they are.
type SettingsParams struct {
	Brightness    *int  `json:"brightness,omitempty"`
	Volume        *int  `json:"volume,omitempty"`
	EmberBurndown *bool `json:"ember_burndown,omitempty"`
	BurnRate      *int  `json:"burn_rate,omitempty"`
	LED           *bool `json:"led,omitempty"`
}

func (p SettingsParams) settings() fireplus.Settings {
	return fireplus.Settings{
		Brightness:    p.Brightness,
		Volume:        p.Volume,
		EmberBurndown: p.EmberBurndown,
		BurnRate:      p.BurnRate,
		LED:           p.LED,
	}
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // "", "STATUS_CHANGE", "ERROR", "ERROR_CLEARED", "UNAVAILABLE", "AVAILABLE", "SETTINGS_CHANGED"
	Limit int       // newest N events; 0 means all
}
