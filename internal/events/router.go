package events

import (
	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - parents browse events without an account
	publicEvents := router.Group("/events")
	{
		publicEvents.GET("", controller.GetAllEvents)
		publicEvents.GET("/:id", controller.GetEvent)
	}

	// Admin routes - staff manage the event catalogue
	adminEvents := router.Group("/admin/events")
	adminEvents.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireAdmin())
	{
		adminEvents.POST("", controller.CreateEvent)
		adminEvents.PUT("/:id", controller.UpdateEvent)
		adminEvents.DELETE("/:id", controller.DeleteEvent)
		adminEvents.POST("/:id/recompute", controller.RecomputeEvent)
	}
}
