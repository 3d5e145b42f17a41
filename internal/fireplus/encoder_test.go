package fireplus

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"fireplus_bridge/internal/models"
)

func ptr[T any](v T) *T { return &v }

func decodeFixture(t *testing.T, panel, config []string) models.Snapshot {
	t.Helper()
	s, err := Decode(frame(panel...), frame(config...))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return s
}

func TestBuildUpdate_NoDeltasReproducesCurrentV1(t *testing.T) {
	current := decodeFixture(t, v1Panel(), v1Configuration())

	got, err := BuildUpdate(current, Settings{})
	if err != nil {
		t.Fatalf("BuildUpdate() error = %v", err)
	}
	want := url.Values{
		"Betrieb":    {"2"},
		"Leistung":   {"4"},
		"Helligkeit": {"50"},
		"Bedienung":  {"1"},
		"LED":        {"1"},
		"AB":         {"1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildUpdate() = %v, want %v", got, want)
	}
}

func TestBuildUpdate_NoDeltasIncrementsCountV2(t *testing.T) {
	current := decodeFixture(t, v2Panel(), v2Configuration())

	got, err := BuildUpdate(current, Settings{})
	if err != nil {
		t.Fatalf("BuildUpdate() error = %v", err)
	}
	want := url.Values{
		"Betrieb":     {"3"},
		"Leistung":    {"8"},
		"Helligkeit":  {"70"},
		"Bedienung":   {"0"},
		"AB":          {"1"},
		"Lautstaerke": {"60"},
		"CNT":         {"0"}, // 99 + 1 wraps
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildUpdate() = %v, want %v", got, want)
	}
}

func TestBuildUpdate_AppliesDeltas(t *testing.T) {
	current := decodeFixture(t, v2Panel(), with(v2Configuration(), 0, "2.0"))
	current.Count = ptr(41)

	got, err := BuildUpdate(current, Settings{
		Brightness:    ptr(30),
		Volume:        ptr(0),
		EmberBurndown: ptr(false),
		BurnRate:      ptr(6),
		LED:           ptr(true), // not part of v2, ignored
	})
	if err != nil {
		t.Fatalf("BuildUpdate() error = %v", err)
	}
	checks := map[string]string{
		"Betrieb":     "4",
		"Leistung":    "8",
		"Helligkeit":  "30",
		"Lautstaerke": "0",
		"AB":          "0",
		"CNT":         "42",
	}
	for k, v := range checks {
		if got.Get(k) != v {
			t.Fatalf("%s = %q, want %q (form %v)", k, got.Get(k), v, got)
		}
	}
	if _, ok := got["LED"]; ok {
		t.Fatalf("v2 form must not contain LED: %v", got)
	}
}

func TestBuildUpdate_V1IgnoresVolumeAndSetsLED(t *testing.T) {
	current := decodeFixture(t, v1Panel(), v1Configuration())

	got, err := BuildUpdate(current, Settings{Volume: ptr(80), LED: ptr(false), BurnRate: ptr(7)})
	if err != nil {
		t.Fatalf("BuildUpdate() error = %v", err)
	}
	if got.Get("LED") != "0" || got.Get("Betrieb") != "4" || got.Get("Leistung") != "8" {
		t.Fatalf("unexpected form: %v", got)
	}
	for _, k := range []string{"Lautstaerke", "CNT"} {
		if _, ok := got[k]; ok {
			t.Fatalf("v1 form must not contain %s: %v", k, got)
		}
	}
}

func TestBuildUpdate_UnknownBurnRateUsesFallbackPair(t *testing.T) {
	cases := []struct {
		name    string
		current models.Snapshot
		mode    string
		power   string
	}{
		{"v1", decodeFixture(t, v1Panel(), v1Configuration()), "1", "4"},
		{"v2", decodeFixture(t, v2Panel(), v2Configuration()), "2", "4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildUpdate(tc.current, Settings{BurnRate: ptr(42)})
			if err != nil {
				t.Fatalf("BuildUpdate() error = %v", err)
			}
			if got.Get("Betrieb") != tc.mode || got.Get("Leistung") != tc.power {
				t.Fatalf("pair = (%s,%s), want (%s,%s)", got.Get("Betrieb"), got.Get("Leistung"), tc.mode, tc.power)
			}
		})
	}
}

func TestBuildUpdate_Errors(t *testing.T) {
	v1 := decodeFixture(t, v1Panel(), v1Configuration())
	v1.LED = nil
	v2 := decodeFixture(t, v2Panel(), v2Configuration())
	v2.Count = nil

	if _, err := BuildUpdate(models.Snapshot{Version: 9}, Settings{}); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := BuildUpdate(v1, Settings{}); !errors.Is(err, errMissingCurrent) {
		t.Fatalf("expected errMissingCurrent for led, got %v", err)
	}
	if _, err := BuildUpdate(v1, Settings{LED: ptr(true)}); err != nil {
		t.Fatalf("explicit led should not need current value: %v", err)
	}
	if _, err := BuildUpdate(v2, Settings{}); !errors.Is(err, errMissingCurrent) {
		t.Fatalf("expected errMissingCurrent for count, got %v", err)
	}
}

func TestNextCount(t *testing.T) {
	cases := map[int]int{0: 1, 41: 42, 98: 99, 99: 0, 150: 51, -1: 0}
	for in, want := range cases {
		if got := NextCount(in); got != want {
			t.Fatalf("NextCount(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSettingsEmpty(t *testing.T) {
	if !(Settings{}).Empty() {
		t.Fatalf("zero Settings must be empty")
	}
	if (Settings{LED: ptr(false)}).Empty() {
		t.Fatalf("Settings with led must not be empty")
	}
}
