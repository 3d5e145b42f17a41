package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger logs one line per request once the handler chain finished.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	if h.log == nil {
		return
	}
	status := c.Writer.Status()
	kv := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"latency", time.Since(start),
	}
	switch {
	case status >= 500:
		h.log.Errorw("http_request", kv...)
	case status >= 400:
		h.log.Warnw("http_request", kv...)
	default:
		h.log.Debugw("http_request", kv...)
	}
}
