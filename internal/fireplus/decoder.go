package fireplus

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fireplus_bridge/internal/models"
)

// Framing of both read endpoints: a fixed two byte prefix, one trailing byte,
// and fields separated by a literal backslash-n (not a newline).
const (
	payloadPrefixLen = 2
	payloadSuffixLen = 1
	fieldSeparator   = `\n`
)

var (
	errPayloadTooShort  = errors.New("payload shorter than its framing")
	errZeroHeatingTotal = errors.New("configuration heating total is 0")
)

// fields is one split payload.
type fields struct {
	name   string
	values []string
}

func splitPayload(name, raw string) (fields, error) {
	if len(raw) < payloadPrefixLen+payloadSuffixLen {
		return fields{}, fmt.Errorf("%s: %w", name, errPayloadTooShort)
	}
	body := raw[payloadPrefixLen : len(raw)-payloadSuffixLen]
	return fields{name: name, values: strings.Split(body, fieldSeparator)}, nil
}

func (f fields) at(i int) (string, error) {
	if i < 0 || i >= len(f.values) {
		return "", fmt.Errorf("%s field %d missing (%d fields)", f.name, i, len(f.values))
	}
	return f.values[i], nil
}

// fieldReader converts fields positionally and keeps the first failure, so a
// decode reads every field and checks the error once.
type fieldReader struct {
	err error
}

func (r *fieldReader) str(f fields, i int) string {
	if r.err != nil {
		return ""
	}
	s, err := f.at(i)
	if err != nil {
		r.err = err
	}
	return s
}

func (r *fieldReader) int(f fields, i int) int {
	s := r.str(f, i)
	if r.err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		r.err = fmt.Errorf("%s field %d: %w", f.name, i, err)
		return 0
	}
	return n
}

func (r *fieldReader) float(f fields, i int) float64 {
	s := r.str(f, i)
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		r.err = fmt.Errorf("%s field %d: %w", f.name, i, err)
		return 0
	}
	return v
}

func (r *fieldReader) flag(f fields, i int) bool {
	return r.str(f, i) == "1"
}

func (r *fieldReader) optionalInt(f fields, i int) *int {
	if i == absent {
		return nil
	}
	v := r.int(f, i)
	return &v
}

func (r *fieldReader) optionalFlag(f fields, i int) *bool {
	if i == absent {
		return nil
	}
	v := r.flag(f, i)
	return &v
}

// Decode builds a Snapshot from the panel and configuration responses. It is
// all-or-nothing: any missing or malformed field yields an
// *InvalidResponseError and a zero Snapshot.
func Decode(panelResponse, configurationResponse string) (models.Snapshot, error) {
	s, err := decode(panelResponse, configurationResponse)
	if err != nil {
		return models.Snapshot{}, &InvalidResponseError{
			Panel:         panelResponse,
			Configuration: configurationResponse,
			Err:           err,
		}
	}
	return s, nil
}

func decode(panelResponse, configurationResponse string) (models.Snapshot, error) {
	panel, err := splitPayload("panel", panelResponse)
	if err != nil {
		return models.Snapshot{}, err
	}
	config, err := splitPayload("configuration", configurationResponse)
	if err != nil {
		return models.Snapshot{}, err
	}

	version, err := parseVersion(config)
	if err != nil {
		return models.Snapshot{}, err
	}
	p, err := protocolFor(version)
	if err != nil {
		return models.Snapshot{}, err
	}

	var r fieldReader
	s := models.Snapshot{
		Version:                 version,
		WebControlsShown:        r.flag(panel, panelWebControls),
		Brightness:              r.int(panel, panelBrightness),
		Temperature:             r.int(panel, panelTemperature),
		AirSlider:               r.float(panel, panelAirSlider),
		ChimneyDraught:          r.float(panel, panelChimneyDraught),
		OperationStatus:         OperationStatusFor(r.str(panel, panelLEDState)),
		ErrorCode:               r.int(panel, panelErrorCode),
		MaxTemperature:          r.int(config, configMaxTemperature),
		SerialNumber:            r.str(config, configSerialNumber),
		ChimneyDraughtAvailable: r.flag(config, configDraughtEnabled),
	}
	s.Error = DeviceErrorFor(s.ErrorCode)

	l := p.layout
	s.LED = r.optionalFlag(panel, l.led)
	s.Volume = r.optionalInt(panel, l.volume)
	s.Count = r.optionalInt(panel, l.count)
	s.OperatingTime = r.optionalInt(config, l.operatingTime)
	s.EmberBurndown = r.flag(panel, l.emberBurndown)

	s.BurnRate = p.burnRates.level(BurnRatePair{
		Mode:  r.int(panel, panelBurnRateMode),
		Power: r.int(panel, panelBurnRatePower),
	})

	progress := r.int(panel, l.heatingProgress)
	total := r.int(config, configHeatingTotal)

	if r.err != nil {
		return models.Snapshot{}, r.err
	}
	if total == 0 {
		return models.Snapshot{}, errZeroHeatingTotal
	}
	s.HeatingProgress = float64(progress) / float64(total) * 100
	return s, nil
}

// parseVersion reads the major version from a token such as "2.07".
func parseVersion(config fields) (models.ProtocolVersion, error) {
	token, err := config.at(configVersion)
	if err != nil {
		return 0, err
	}
	major, _, _ := strings.Cut(token, ".")
	v, err := strconv.Atoi(strings.TrimSpace(major))
	if err != nil {
		return 0, fmt.Errorf("configuration version %q: %w", token, err)
	}
	return models.ProtocolVersion(v), nil
}
