package fireplus

import (
	"errors"
	"testing"

	"fireplus_bridge/internal/models"
)

func TestBurnRateRoundTrip(t *testing.T) {
	for _, v := range []models.ProtocolVersion{models.ProtocolV1, models.ProtocolV2} {
		lo, hi, err := BurnRateRange(v)
		if err != nil {
			t.Fatalf("BurnRateRange(%d) error = %v", v, err)
		}
		for level := lo; level <= hi; level++ {
			pair, err := EncodeBurnRate(v, level)
			if err != nil {
				t.Fatalf("EncodeBurnRate(%d, %d) error = %v", v, level, err)
			}
			got, err := DecodeBurnRate(v, pair)
			if err != nil {
				t.Fatalf("DecodeBurnRate(%d, %v) error = %v", v, pair, err)
			}
			if got != level {
				t.Fatalf("v%d: decode(encode(%d)) = %d", v, level, got)
			}
		}
	}
}

func TestBurnRateRange(t *testing.T) {
	cases := map[models.ProtocolVersion][2]int{
		models.ProtocolV1: {1, 7},
		models.ProtocolV2: {1, 6},
	}
	for v, want := range cases {
		lo, hi, err := BurnRateRange(v)
		if err != nil || lo != want[0] || hi != want[1] {
			t.Fatalf("BurnRateRange(%d) = %d, %d, %v; want %d, %d", v, lo, hi, err, want[0], want[1])
		}
	}
	if _, _, err := BurnRateRange(3); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestEncodeBurnRate_Fallback(t *testing.T) {
	pair, err := EncodeBurnRate(models.ProtocolV2, 0)
	if err != nil {
		t.Fatalf("EncodeBurnRate() error = %v", err)
	}
	if pair != (BurnRatePair{Mode: 2, Power: 4}) {
		t.Fatalf("pair = %v, want {2 4}", pair)
	}
}

func TestNewBurnRateTable_RejectsDuplicatePairs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-bijective table")
		}
	}()
	newBurnRateTable(map[int]BurnRatePair{1: {1, 4}, 2: {1, 4}}, 1)
}

func TestCapabilities(t *testing.T) {
	if !SupportsLED(models.ProtocolV1) || SupportsLED(models.ProtocolV2) {
		t.Fatalf("led support mismatch")
	}
	if SupportsVolume(models.ProtocolV1) || !SupportsVolume(models.ProtocolV2) {
		t.Fatalf("volume support mismatch")
	}
	if SupportsLED(5) || SupportsVolume(5) {
		t.Fatalf("unknown versions support nothing")
	}
}

func TestLookups(t *testing.T) {
	if OperationStatusFor("Violett dunkel") != models.StatusEmberPreservation {
		t.Fatalf("Violett dunkel must map to EMBER_PRESERVATION")
	}
	if OperationStatusFor("gruen") != models.StatusUnknown {
		t.Fatalf("lookup is case sensitive")
	}
	for _, code := range []int{1, 7, 8} {
		if DeviceErrorFor(code) != models.ErrorTemperatureSensorDefective {
			t.Fatalf("code %d must map to TEMPERATURE_SENSOR_DEFECTIVE", code)
		}
	}
	if DeviceErrorFor(10) != models.ErrorWrongMotorDirection || DeviceErrorFor(-3) != models.ErrorUnknown {
		t.Fatalf("unexpected error lookup")
	}
}
