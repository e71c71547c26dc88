package waitlist

import (
	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupWaitlistRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public routes - joining and the emailed confirmation link
	router.POST("/waitlist", controller.JoinWaitlist)
	router.GET("/confirm/:entryId", controller.Confirm)

	// Admin routes - staff operate the queue
	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles("ADMIN", "STAFF"))
	{
		admin.GET("/waitlist/:id", controller.GetEntry)
		admin.DELETE("/waitlist/:id", controller.CancelEntry)
		admin.POST("/waitlist/:id/promote", controller.PromoteManually)
		admin.POST("/waitlist/:id/move", controller.MoveDirectly)

		admin.GET("/events/:id/waitlist", controller.ListEntries)
		admin.GET("/events/:id/waitlist/stats", controller.GetStats)
		admin.POST("/events/:id/waitlist/promote", controller.PromoteEvent)
	}
}
