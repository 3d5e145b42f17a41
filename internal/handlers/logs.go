package handlers

import (
	"fmt"
	"net/http"
	"time"

	"fireplus_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errListLogs         = "failed to load logs"
	errInvalidQueryPref = "invalid query: "

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var boundLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// logQuery is the raw query string of GET /api/v1/logs.
type logQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Type  string `form:"type"`
	Limit int    `form:"limit" binding:"gte=0,lte=1000"`
}

func (q logQuery) filter() (service.LogFilter, error) {
	from, err := parseBound(q.From, false)
	if err != nil {
		return service.LogFilter{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseBound(q.To, true)
	if err != nil {
		return service.LogFilter{}, fmt.Errorf("to: %w", err)
	}
	return service.LogFilter{From: from, To: to, Type: q.Type, Limit: q.Limit}, nil
}

// parseBound reads an optional bound in UTC. A date-only upper bound
// includes the whole day.
func parseBound(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range boundLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if upper && layout == layoutDate {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q is not RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}

// @Summary      List logs
// @Description  Operational events oldest first. Bounds accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from   query  string   false  "Start of range"  example(2025-08-01)
// @Param        to     query  string   false  "End of range"    example(2025-08-31)
// @Param        type   query  string   false  "Event type"  Enums(STATUS_CHANGE,ERROR,ERROR_CLEARED,UNAVAILABLE,AVAILABLE,SETTINGS_CHANGED)
// @Param        limit  query  integer  false  "Newest N events, at most 1000"
// @Success      200    {object}  map[string]interface{}  "count, events"
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	var q logQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidQueryPref + err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidQueryPref + err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		if code := statusFor(err); code == http.StatusBadRequest {
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errListLogs, "logs_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}
