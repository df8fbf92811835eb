package handlers

import (
	"net/http"
	"time"

	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services       *service.Service
	log            *logger.Logger
	metrics        http.Handler
	streamInterval time.Duration
}

// Option customizes a Handler.
type Option func(*Handler)

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(hd *Handler) { hd.metrics = h }
}

// WithStreamInterval sets the default push interval of /ws/status.
func WithStreamInterval(d time.Duration) Option {
	return func(hd *Handler) {
		if d >= minInterval && d <= maxInterval {
			hd.streamInterval = d
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, streamInterval: defaultInterval}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Operator status stream, same port
	router.GET("/ws/status", h.invocationMiddleware, h.adminMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.invocationMiddleware)
	{
		h.registerScheduleRoutes(api)
		h.registerThermostatRoutes(api)
	}
}

func (h *Handler) registerScheduleRoutes(api *gin.RouterGroup) {
	schedules := api.Group("/schedules")
	{
		schedules.POST("/plan", h.planSchedules)
		schedules.GET("", h.listSchedules)
	}
}

func (h *Handler) registerThermostatRoutes(api *gin.RouterGroup) {
	thermostats := api.Group("/thermostats")
	{
		thermostats.GET("/status", h.adminMiddleware, h.getStatus)
		thermostats.GET("/homes", h.getHomes)
		// Body example: {"mapping_id":12,"mode":"manual","temp":21.5,"endtime":1767268800}
		thermostats.POST("/setpoint", h.setSetpoint)
		thermostats.GET("/weather", h.getWeather)
	}
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
