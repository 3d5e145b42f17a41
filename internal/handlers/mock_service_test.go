package handlers

import (
	"context"
	"errors"

	"fireplus_bridge/internal/models"
	"fireplus_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

var errDBDown = errors.New("db down")

type mockControls struct {
	applyErr   error
	lastParams service.SettingsParams
	applyCalls int
}

func (m *mockControls) Apply(ctx context.Context, p service.SettingsParams) error {
	m.applyCalls++
	m.lastParams = p
	return m.applyErr
}

type mockMonitoring struct {
	state   models.Snapshot
	sensors models.Sensors
	err     error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.Snapshot, error) {
	return m.state, m.err
}

func (m *mockMonitoring) Sensors(ctx context.Context) (models.Sensors, error) {
	return m.sensors, m.err
}

type mockEventLog struct {
	resp  []models.DeviceEvent
	err   error
	calls int
	last  service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.calls++
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
