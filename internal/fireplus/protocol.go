package fireplus

import (
	"errors"
	"fmt"
	"sort"

	"fireplus_bridge/internal/models"
)

// Positions shared by both protocol versions.
const (
	panelWebControls     = 1
	panelBurnRateMode    = 2
	panelBurnRatePower   = 3
	panelBrightness      = 4
	panelTemperature     = 5
	panelAirSlider       = 6
	panelChimneyDraught  = 7
	panelLEDState        = 8
	panelErrorCode       = 9
	configVersion        = 0
	configMaxTemperature = 1
	configSerialNumber   = 3
	configDraughtEnabled = 4
	configHeatingTotal   = 6
)

// absent marks a field the protocol version does not carry.
const absent = -1

// fieldLayout holds the version-specific positions. Optional fields set to
// absent are decoded as nil and left out of the write request.
type fieldLayout struct {
	led             int // panel
	emberBurndown   int // panel
	volume          int // panel
	count           int // panel
	heatingProgress int // panel
	operatingTime   int // configuration
}

type protocol struct {
	version   models.ProtocolVersion
	layout    fieldLayout
	burnRates *burnRateTable
}

var protocols = map[models.ProtocolVersion]*protocol{
	models.ProtocolV1: {
		version: models.ProtocolV1,
		layout: fieldLayout{
			led:             10,
			emberBurndown:   11,
			volume:          absent,
			count:           absent,
			heatingProgress: 12,
			operatingTime:   absent,
		},
		burnRates: newBurnRateTable(map[int]BurnRatePair{
			1: {1, 4}, 2: {2, 4}, 3: {3, 4}, 4: {4, 4}, 5: {2, 8}, 6: {3, 8}, 7: {4, 8},
		}, 1),
	},
	models.ProtocolV2: {
		version: models.ProtocolV2,
		layout: fieldLayout{
			led:             absent,
			emberBurndown:   10,
			volume:          12,
			count:           16,
			heatingProgress: 11,
			operatingTime:   7,
		},
		burnRates: newBurnRateTable(map[int]BurnRatePair{
			1: {2, 4}, 2: {3, 4}, 3: {4, 4}, 4: {2, 8}, 5: {3, 8}, 6: {4, 8},
		}, 1),
	},
}

// ErrUnsupportedVersion is wrapped when a payload or snapshot carries a
// protocol version other than 1 or 2.
var ErrUnsupportedVersion = errors.New("unsupported protocol version")

func protocolFor(v models.ProtocolVersion) (*protocol, error) {
	p, ok := protocols[v]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return p, nil
}

// BurnRatePair is the device-internal encoding of a burn rate level.
type BurnRatePair struct {
	Mode  int // "Betrieb"
	Power int // "Leistung"
}

// burnRateTable is a bijection between user-facing levels and raw pairs,
// derived once from the forward table.
type burnRateTable struct {
	levels   map[int]BurnRatePair
	pairs    map[BurnRatePair]int
	sorted   []int
	fallback int
}

func newBurnRateTable(levels map[int]BurnRatePair, fallback int) *burnRateTable {
	t := &burnRateTable{
		levels:   levels,
		pairs:    make(map[BurnRatePair]int, len(levels)),
		sorted:   make([]int, 0, len(levels)),
		fallback: fallback,
	}
	for level, pair := range levels {
		if other, dup := t.pairs[pair]; dup {
			panic(fmt.Sprintf("burn rate levels %d and %d share pair %v", other, level, pair))
		}
		t.pairs[pair] = level
		t.sorted = append(t.sorted, level)
	}
	if _, ok := levels[fallback]; !ok {
		panic(fmt.Sprintf("fallback burn rate %d not in table", fallback))
	}
	sort.Ints(t.sorted)
	return t
}

// level decodes a raw pair; unknown pairs decode to the fallback level.
func (t *burnRateTable) level(p BurnRatePair) int {
	if level, ok := t.pairs[p]; ok {
		return level
	}
	return t.fallback
}

// pair encodes a level; unknown levels encode to the fallback level's pair.
func (t *burnRateTable) pair(level int) BurnRatePair {
	if p, ok := t.levels[level]; ok {
		return p
	}
	return t.levels[t.fallback]
}

func (t *burnRateTable) bounds() (lo, hi int) {
	return t.sorted[0], t.sorted[len(t.sorted)-1]
}

// EncodeBurnRate returns the raw pair written for a burn rate level.
func EncodeBurnRate(v models.ProtocolVersion, level int) (BurnRatePair, error) {
	p, err := protocolFor(v)
	if err != nil {
		return BurnRatePair{}, err
	}
	return p.burnRates.pair(level), nil
}

// DecodeBurnRate returns the burn rate level for a raw pair.
func DecodeBurnRate(v models.ProtocolVersion, pair BurnRatePair) (int, error) {
	p, err := protocolFor(v)
	if err != nil {
		return 0, err
	}
	return p.burnRates.level(pair), nil
}

// BurnRateRange reports the lowest and highest burn rate level of a version.
func BurnRateRange(v models.ProtocolVersion) (lo, hi int, err error) {
	p, err := protocolFor(v)
	if err != nil {
		return 0, 0, err
	}
	lo, hi = p.burnRates.bounds()
	return lo, hi, nil
}

// SupportsLED reports whether the version exposes the LED switch.
func SupportsLED(v models.ProtocolVersion) bool {
	p, err := protocolFor(v)
	return err == nil && p.layout.led != absent
}

// SupportsVolume reports whether the version exposes the volume setting.
func SupportsVolume(v models.ProtocolVersion) bool {
	p, err := protocolFor(v)
	return err == nil && p.layout.volume != absent
}
