package handlers

import (
	"errors"
	"net/http"

	"fireplus_bridge/internal/fireplus"
	"fireplus_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusApplied = "applied"

	errGetState        = "failed to load state"
	errApplySettings   = "failed to apply settings"
	errNoSnapshotYet   = "no data from the controller yet"
	errDeviceFailed    = "controller request failed"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service and controller errors onto HTTP status codes.
func statusFor(err error) int {
	var comm *fireplus.CommunicationError
	switch {
	case errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrUnknownEventType):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	case errors.As(err, &comm):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// SettingsRequest is an exported model for Swagger docs of the settings payload.
type SettingsRequest struct {
	// Panel brightness in percent, 0..100
	Brightness *int `json:"brightness,omitempty" example:"80"`
	// Speaker volume in percent, 0..100 (protocol version 2 only)
	Volume *int `json:"volume,omitempty" example:"40"`
	// Ember burndown enabled
	EmberBurndown *bool `json:"ember_burndown,omitempty" example:"true"`
	// Burn rate level, 1..7 on version 1, 1..6 on version 2
	BurnRate *int `json:"burn_rate,omitempty" example:"4"`
	// Panel LED (protocol version 1 only)
	LED *bool `json:"led,omitempty" example:"true"`
}

func (r SettingsRequest) params() service.SettingsParams {
	return service.SettingsParams{
		Brightness:    r.Brightness,
		Volume:        r.Volume,
		EmberBurndown: r.EmberBurndown,
		BurnRate:      r.BurnRate,
		LED:           r.LED,
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get controller state
// @Description  Latest decoded snapshot of the fire+ controller
// @Tags         fireplus
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fireplus/state [get]
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.handleReadError(c, err, "fireplus_get_state_failed")
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get sensor readings
// @Description  Readings derived from the latest snapshot; unavailable readings are omitted
// @Tags         fireplus
// @Produce      json
// @Success      200  {object}  models.Sensors
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/fireplus/sensors [get]
func (h *Handler) getSensors(c *gin.Context) {
	s, err := h.services.Monitoring.Sensors(c.Request.Context())
	if err != nil {
		h.handleReadError(c, err, "fireplus_get_sensors_failed")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) handleReadError(c *gin.Context, err error, logKey string) {
	if errors.Is(err, service.ErrNoSnapshot) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoSnapshotYet})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, errGetState, logKey, err)
}

// @Summary      Apply settings
// @Description  Partial update; omitted fields keep their current value. The response carries the refreshed state.
// @Tags         fireplus
// @Accept       json
// @Produce      json
// @Param        body  body   SettingsRequest  true  "Settings payload"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/fireplus/settings [post]
func (h *Handler) applySettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Controls.Apply(ctx, req.params()); err != nil {
		switch code := statusFor(err); code {
		case http.StatusBadRequest:
			c.JSON(code, gin.H{"error": err.Error()})
		case http.StatusBadGateway, http.StatusServiceUnavailable:
			h.logAndJSONError(c, code, errDeviceFailed, "fireplus_apply_settings_failed", err)
		default:
			h.logAndJSONError(c, code, errApplySettings, "fireplus_apply_settings_failed", err)
		}
		return
	}

	// Respond with the refreshed state if available (best-effort).
	resp := gin.H{"status": statusApplied}
	if st, err := h.services.Monitoring.GetState(ctx); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}
