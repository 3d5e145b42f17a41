package models

import "time"

// VolumeIcon buckets the speaker volume for display.
type VolumeIcon string

const (
	VolumeOff    VolumeIcon = "off"
	VolumeLow    VolumeIcon = "low"
	VolumeMedium VolumeIcon = "medium"
	VolumeHigh   VolumeIcon = "high"
)

const (
	lowVolume    = 30
	mediumVolume = 70
)

// VolumeIconFor maps a volume percentage to its icon bucket.
func VolumeIconFor(volume int) VolumeIcon {
	switch {
	case volume == 0:
		return VolumeOff
	case volume <= lowVolume:
		return VolumeLow
	case volume <= mediumVolume:
		return VolumeMedium
	default:
		return VolumeHigh
	}
}

// Sensors is the read-only view derived from a Snapshot. Pointer fields are
// nil when the reading is not available for the device or its current state.
type Sensors struct {
	SerialNumber    string          `json:"serial_number"`
	Temperature     int             `json:"temperature"`               // °C
	ChimneyDraught  *float64        `json:"chimney_draught,omitempty"` // Pa
	AirSlider       float64         `json:"air_slider"`                // %
	OperatingTime   *int            `json:"operating_time,omitempty"`  // s
	HeatingProgress *float64        `json:"heating_progress,omitempty"`
	OperationStatus OperationStatus `json:"operation_status"`
	Error           DeviceError     `json:"error"`
	Problem         bool            `json:"problem"`
	BurnRate        int             `json:"burn_rate"`
	VolumeIcon      VolumeIcon      `json:"volume_icon,omitempty"`
	FetchedAt       time.Time       `json:"fetched_at"`
}
