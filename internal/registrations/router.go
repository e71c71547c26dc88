package registrations

import (
	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRegistrationRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public intake - parents register without an account
	public := router.Group("/registrations")
	{
		public.POST("", controller.CreateRegistration)
	}

	// Staff manage registrations
	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRoles("ADMIN", "STAFF"))
	{
		admin.GET("/registrations/:id", controller.GetRegistration)
		admin.DELETE("/registrations/:id", controller.DeleteRegistration)
		admin.DELETE("/registrations/:id/children/:childId", controller.RemoveChild)
		admin.GET("/events/:id/registrations", controller.GetRegistrationsByEvent)
	}
}
