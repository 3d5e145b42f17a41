package fireplus

import "fireplus_bridge/internal/models"

// LED state tokens reported in the panel response.
var operationStatusLookup = map[string]models.OperationStatus{
	"aus":            models.StatusStandby,
	"Gruen":          models.StatusRegular,
	"Gruen blinkt":   models.StatusHeating,
	"Gelb":           models.StatusWoodRequired,
	"Gelb blinkt":    models.StatusWoodUrgentlyRequired,
	"Violett dunkel": models.StatusEmberPreservation,
	"Orange":         models.StatusEmberBurndown,
	"Rot blinkt":     models.StatusError,
}

// Codes 1, 7 and 8 all denote a temperature sensor defect.
var errorLookup = map[int]models.DeviceError{
	0:  models.ErrorNone,
	1:  models.ErrorTemperatureSensorDefective,
	2:  models.ErrorPressureMeasurementDefective,
	3:  models.ErrorAirSliderDefective,
	4:  models.ErrorServiceModeEnabled,
	5:  models.ErrorChimneyDraughtTooLow,
	6:  models.ErrorAirSliderStuck,
	7:  models.ErrorTemperatureSensorDefective,
	8:  models.ErrorTemperatureSensorDefective,
	9:  models.ErrorNoChimneyDraught,
	10: models.ErrorWrongMotorDirection,
}

// OperationStatusFor maps an LED state token; unknown tokens map to StatusUnknown.
func OperationStatusFor(ledState string) models.OperationStatus {
	if s, ok := operationStatusLookup[ledState]; ok {
		return s
	}
	return models.StatusUnknown
}

// DeviceErrorFor maps a raw error code; unknown codes map to ErrorUnknown.
func DeviceErrorFor(code int) models.DeviceError {
	if e, ok := errorLookup[code]; ok {
		return e
	}
	return models.ErrorUnknown
}
