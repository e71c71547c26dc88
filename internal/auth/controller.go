package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vereinsportal/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{
		service: service,
	}
}

func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(ctx, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Logged in", resp)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	pair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(ctx, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Token refreshed", pair)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "Invalid request body", err.Error())
		return
	}

	userID, exists := ctx.Get("user_id")
	if !exists {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	if err := c.service.ChangePassword(ctx.Request.Context(), userID.(string), &req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(ctx, http.StatusUnauthorized, "Current password is incorrect", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to change password", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Password changed", nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	userID, exists := ctx.Get("user_id")
	if !exists {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	user, err := c.service.GetUser(ctx.Request.Context(), userID.(string))
	if err != nil {
		response.Error(ctx, http.StatusNotFound, "User not found", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "", user)
}
