package registrations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vereinsportal/internal/events"
	"vereinsportal/internal/shared/utils/response"
)

type Controller interface {
	CreateRegistration(c *gin.Context)
	GetRegistration(c *gin.Context)
	GetRegistrationsByEvent(c *gin.Context)
	DeleteRegistration(c *gin.Context)
	RemoveChild(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateRegistration(c *gin.Context) {
	var req CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := ctrl.service.CreateRegistration(c.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	if !result.Registered {
		// Full event: not an error, the family gets a waitlist offer.
		response.RespondJSON(c, "success", http.StatusOK, result.Message, result, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, result.Message, result, nil)
}

func (ctrl *controller) GetRegistration(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid registration ID", nil, err.Error())
		return
	}

	registration, err := ctrl.service.GetRegistration(c.Request.Context(), registrationID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrRegistrationNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Registration retrieved successfully", registration, nil)
}

func (ctrl *controller) GetRegistrationsByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	registrations, err := ctrl.service.GetRegistrationsByEvent(c.Request.Context(), eventID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Registrations retrieved successfully", registrations, nil)
}

func (ctrl *controller) DeleteRegistration(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid registration ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteRegistration(c.Request.Context(), registrationID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrRegistrationNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Registration cancelled successfully", nil, nil)
}

func (ctrl *controller) RemoveChild(c *gin.Context) {
	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid registration ID", nil, err.Error())
		return
	}

	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid child ID", nil, err.Error())
		return
	}

	if err := ctrl.service.RemoveChild(c.Request.Context(), registrationID, childID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrRegistrationNotFound) || errors.Is(err, ErrChildNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Child removed from registration", nil, nil)
}
