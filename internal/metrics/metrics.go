// Package metrics exposes the latest fire+ snapshot as Prometheus gauges.
package metrics

import (
	"net/http"

	"fireplus_bridge/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fireplus"

var allStatuses = []models.OperationStatus{
	models.StatusUnknown,
	models.StatusStandby,
	models.StatusRegular,
	models.StatusHeating,
	models.StatusWoodRequired,
	models.StatusWoodUrgentlyRequired,
	models.StatusEmberPreservation,
	models.StatusEmberBurndown,
	models.StatusError,
}

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	gauges map[string]prometheus.Gauge
	status *prometheus.GaugeVec
	info   *prometheus.GaugeVec
	polls  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gauges:   map[string]prometheus.Gauge{},
	}

	m.addGauge("up", "1 if the last poll of the controller succeeded")
	m.addGauge("temperature_celsius", "Combustion chamber temperature (°C)")
	m.addGauge("max_temperature_celsius", "Configured maximum temperature (°C)")
	m.addGauge("air_slider_percent", "Air slider opening (%)")
	m.addGauge("chimney_draught_pascal", "Chimney draught (Pa)")
	m.addGauge("burn_rate", "Burn rate level")
	m.addGauge("brightness_percent", "Panel brightness (%)")
	m.addGauge("volume_percent", "Speaker volume (%)")
	m.addGauge("heating_progress_percent", "Heating progress (%), 0 unless heating")
	m.addGauge("operating_time_seconds", "Operating time (s)")
	m.addGauge("error_code", "Raw controller error code")
	m.addGauge("ember_burndown", "1 if ember burndown is enabled")

	m.status = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "operation_status",
		Help:      "1 for the current operation status",
	}, []string{"status"})
	m.info = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "controller_info",
		Help:      "Controller identity",
	}, []string{"serial_number", "version"})
	m.polls = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Successful polls",
	})

	for _, g := range m.gauges {
		m.registry.MustRegister(g)
	}
	m.registry.MustRegister(
		m.status,
		m.info,
		m.polls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) addGauge(name, help string) {
	m.gauges[name] = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func (m *Metrics) set(name string, v float64) {
	if g, ok := m.gauges[name]; ok {
		g.Set(v)
	}
}

// PublishSnapshot updates every gauge from s.
func (m *Metrics) PublishSnapshot(s models.Snapshot) error {
	m.set("temperature_celsius", float64(s.Temperature))
	m.set("max_temperature_celsius", float64(s.MaxTemperature))
	m.set("air_slider_percent", s.AirSlider)
	m.set("chimney_draught_pascal", s.ChimneyDraught)
	m.set("burn_rate", float64(s.BurnRate))
	m.set("brightness_percent", float64(s.Brightness))
	m.set("error_code", float64(s.ErrorCode))
	m.set("ember_burndown", boolToFloat(s.EmberBurndown))

	progress := 0.0
	if s.Heating() {
		progress = s.HeatingProgress
	}
	m.set("heating_progress_percent", progress)

	if s.Volume != nil {
		m.set("volume_percent", float64(*s.Volume))
	}
	if s.OperatingTime != nil {
		m.set("operating_time_seconds", float64(*s.OperatingTime))
	}

	for _, st := range allStatuses {
		m.status.WithLabelValues(st.String()).Set(boolToFloat(st == s.OperationStatus))
	}

	m.info.Reset()
	m.info.WithLabelValues(s.SerialNumber, versionLabel(s.Version)).Set(1)
	m.polls.Inc()
	return nil
}

// PublishAvailability sets the up gauge.
func (m *Metrics) PublishAvailability(available bool) error {
	m.set("up", boolToFloat(available))
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func versionLabel(v models.ProtocolVersion) string {
	switch v {
	case models.ProtocolV1:
		return "1"
	case models.ProtocolV2:
		return "2"
	default:
		return "unknown"
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
