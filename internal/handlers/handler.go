package handlers

import (
	"net/http"

	"fireplus_bridge/internal/logger"
	"fireplus_bridge/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  http.Handler
}

// NewHandler constructs a new HTTP handler with dependencies. A nil metrics
// handler leaves /metrics unregistered.
func NewHandler(services *service.Service, log *logger.Logger, metrics http.Handler) *Handler {
	return &Handler{services: services, log: log, metrics: metrics}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAPIRoutes(router)

	// Snapshot stream over WebSocket, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerFireplusRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerFireplusRoutes(api *gin.RouterGroup) {
	fp := api.Group("/fireplus")
	{
		fp.GET("/state", h.getState)
		fp.GET("/sensors", h.getSensors)
		// Body example: {"burn_rate":4,"brightness":80}
		fp.POST("/settings", h.applySettings)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
		logs.GET("/", h.getLogs)
	}
}
