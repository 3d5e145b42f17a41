package models

import "fmt"

// OperationStatus is derived from the LED state reported by the controller.
type OperationStatus int

const (
	StatusUnknown OperationStatus = iota
	StatusStandby
	StatusRegular
	StatusHeating
	StatusWoodRequired
	StatusWoodUrgentlyRequired
	StatusEmberPreservation
	StatusEmberBurndown
	StatusError
)

var operationStatusNames = [...]string{
	StatusUnknown:              "UNKNOWN",
	StatusStandby:              "STANDBY",
	StatusRegular:              "REGULAR",
	StatusHeating:              "HEATING",
	StatusWoodRequired:         "WOOD_REQUIRED",
	StatusWoodUrgentlyRequired: "WOOD_URGENTLY_REQUIRED",
	StatusEmberPreservation:    "EMBER_PRESERVATION",
	StatusEmberBurndown:        "EMBER_BURNDOWN",
	StatusError:                "ERROR",
}

func (s OperationStatus) String() string {
	if s < 0 || int(s) >= len(operationStatusNames) {
		return operationStatusNames[StatusUnknown]
	}
	return operationStatusNames[s]
}

func (s OperationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *OperationStatus) UnmarshalText(b []byte) error {
	for i, name := range operationStatusNames {
		if name == string(b) {
			*s = OperationStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown operation status %q", b)
}

// DeviceError is the defect category behind a controller error code.
type DeviceError int

const (
	ErrorNone DeviceError = iota
	ErrorTemperatureSensorDefective
	ErrorPressureMeasurementDefective
	ErrorAirSliderDefective
	ErrorServiceModeEnabled
	ErrorChimneyDraughtTooLow
	ErrorAirSliderStuck
	ErrorNoChimneyDraught
	ErrorWrongMotorDirection
	ErrorUnknown
)

var deviceErrorNames = [...]string{
	ErrorNone:                         "NONE",
	ErrorTemperatureSensorDefective:   "TEMPERATURE_SENSOR_DEFECTIVE",
	ErrorPressureMeasurementDefective: "PRESSURE_MEASUREMENT_DEFECTIVE",
	ErrorAirSliderDefective:           "AIR_SLIDER_DEFECTIVE",
	ErrorServiceModeEnabled:           "SERVICE_MODE_ENABLED",
	ErrorChimneyDraughtTooLow:         "CHIMNEY_DRAUGHT_TOO_LOW",
	ErrorAirSliderStuck:               "AIR_SLIDER_STUCK",
	ErrorNoChimneyDraught:             "NO_CHIMNEY_DRAUGHT",
	ErrorWrongMotorDirection:          "WRONG_MOTOR_DIRECTION",
	ErrorUnknown:                      "UNKNOWN",
}

func (e DeviceError) String() string {
	if e < 0 || int(e) >= len(deviceErrorNames) {
		return deviceErrorNames[ErrorUnknown]
	}
	return deviceErrorNames[e]
}

func (e DeviceError) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *DeviceError) UnmarshalText(b []byte) error {
	for i, name := range deviceErrorNames {
		if name == string(b) {
			*e = DeviceError(i)
			return nil
		}
	}
	return fmt.Errorf("unknown device error %q", b)
}
