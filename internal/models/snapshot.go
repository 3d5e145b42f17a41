package models

import "time"

// ProtocolVersion selects the positional field layout of the device responses.
type ProtocolVersion int

const (
	ProtocolV1 ProtocolVersion = 1
	ProtocolV2 ProtocolVersion = 2
)

// Snapshot is one decoded poll of the fire+ controller. It is built fresh on
// every successful read and never mutated afterwards.
type Snapshot struct {
	Version                 ProtocolVersion `json:"version"`
	SerialNumber            string          `json:"serial_number"`
	WebControlsShown        bool            `json:"web_controls_shown"`
	Brightness              int             `json:"brightness"`      // %
	Volume                  *int            `json:"volume"`          // %, v2 only
	Temperature             int             `json:"temperature"`     // °C
	MaxTemperature          int             `json:"max_temperature"` // °C
	AirSlider               float64         `json:"air_slider"`      // %
	ChimneyDraught          float64         `json:"chimney_draught"` // Pa
	ChimneyDraughtAvailable bool            `json:"chimney_draught_available"`
	OperationStatus         OperationStatus `json:"operation_status"`
	Error                   DeviceError     `json:"error"`
	ErrorCode               int             `json:"error_code"`
	Count                   *int            `json:"count"`          // write sequence counter, v2 only
	OperatingTime           *int            `json:"operating_time"` // seconds, v2 only
	EmberBurndown           bool            `json:"ember_burndown"`
	HeatingProgress         float64         `json:"heating_progress"` // %, meaningful while HEATING
	BurnRate                int             `json:"burn_rate"`
	LED                     *bool           `json:"led"` // v1 only
	FetchedAt               time.Time       `json:"fetched_at"`
}

// Heating reports whether HeatingProgress carries a meaningful value.
func (s Snapshot) Heating() bool {
	return s.OperationStatus == StatusHeating
}
