package auth

import (
	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers all staff auth routes
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", controller.Login)
		auth.POST("/refresh", controller.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.JWTAuthWithConfig(cfg))
		{
			protected.PUT("/change-password", controller.ChangePassword)
			protected.GET("/me", controller.GetMe)
		}
	}
}
