package handlers

import (
	"thermal_regulator/internal/logger"
	"thermal_regulator/internal/service"
	"thermal_regulator/internal/telemetry"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *telemetry.Hub
	log      *logger.Logger
}

// NewHandler constructs the HTTP handler. hub may be nil, which disables /ws.
func NewHandler(services *service.Service, hub *telemetry.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// remote notifications, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerControllerRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerControllerRoutes(api *gin.RouterGroup) {
	ctrl := api.Group("/controller")
	{
		ctrl.GET("/state", h.getState)
		// Body example: {"keys":"A100#"}
		ctrl.POST("/keys", h.pressKeys)
		// Body example: {"target_c":100}
		ctrl.POST("/setpoint", h.setTarget)
		ctrl.POST("/cancel", h.cancel)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
