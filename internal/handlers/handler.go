package handlers

import (
	"vacuum_bridge/internal/config"
	"vacuum_bridge/internal/logger"
	"vacuum_bridge/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	limiter  *ipRateLimiter
}

// NewHandler constructs a new HTTP handler with dependencies. A zero
// RateLimitConfig disables rate limiting.
func NewHandler(services *service.Service, log *logger.Logger, limits config.RateLimitConfig) *Handler {
	return &Handler{
		services: services,
		log:      log,
		limiter:  newIPRateLimiter(limits.RPS, limits.Burst),
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metricsMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/docs", h.docsRedirect)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerLegacyRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

// registerLegacyRoutes keeps the original flat GET endpoints working for
// existing home automations.
func (h *Handler) registerLegacyRoutes(r *gin.Engine) {
	legacy := r.Group("/", h.authMiddleware)
	{
		legacy.GET("/list", h.listVacuums)
		legacy.GET("/start", h.rateLimitMiddleware, h.legacyControl)
		legacy.GET("/stop", h.rateLimitMiddleware, h.legacyControl)
		legacy.GET("/pause", h.rateLimitMiddleware, h.legacyControl)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		h.registerVacuumRoutes(api)
		h.registerAlarmRoutes(api)
		h.registerEventRoutes(api)
		h.registerSimRoutes(api)
	}
}

func (h *Handler) registerVacuumRoutes(api *gin.RouterGroup) {
	vacuums := api.Group("/vacuums")
	{
		vacuums.GET("", h.listVacuums)
		vacuums.POST("/:action", h.rateLimitMiddleware, h.controlVacuums)
	}
	api.GET("/cooldowns", h.getCooldowns)
}

func (h *Handler) registerAlarmRoutes(api *gin.RouterGroup) {
	api.GET("/alarm", h.getAlarm)
}

func (h *Handler) registerEventRoutes(api *gin.RouterGroup) {
	api.GET("/events", h.getEvents)
}

func (h *Handler) registerSimRoutes(api *gin.RouterGroup) {
	sim := api.Group("/sim")
	{
		sim.POST("/alarm", h.setSimAlarm)
		sim.POST("/expire-sessions", h.expireSimSessions)
	}
}
