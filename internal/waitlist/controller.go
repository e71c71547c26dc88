package waitlist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vereinsportal/internal/events"
	"vereinsportal/internal/shared/utils/response"
)

type Controller interface {
	JoinWaitlist(c *gin.Context)
	Confirm(c *gin.Context)
	GetEntry(c *gin.Context)
	ListEntries(c *gin.Context)
	GetStats(c *gin.Context)
	CancelEntry(c *gin.Context)
	PromoteEvent(c *gin.Context)
	PromoteManually(c *gin.Context)
	MoveDirectly(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) JoinWaitlist(c *gin.Context) {
	var req JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	entry, err := ctrl.service.JoinWaitlist(c.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Added to the waitlist", entry, nil)
}

// Confirm answers with the fixed confirmation payload rather than the
// standard envelope; the link lands in mail clients and its shape is part of
// the public contract.
func (ctrl *controller) Confirm(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ConfirmResult{
			Error:   ConfirmErrNotFound,
			Message: "This confirmation link does not match any waitlist entry.",
		})
		return
	}

	result := ctrl.service.Confirm(c.Request.Context(), entryID, c.Query("token"))
	c.JSON(confirmStatusCode(result), result)
}

func confirmStatusCode(result ConfirmResult) int {
	if result.Success {
		return http.StatusOK
	}
	switch result.Error {
	case ConfirmErrMissingToken, ConfirmErrInvalidToken:
		return http.StatusBadRequest
	case ConfirmErrNotFound:
		return http.StatusNotFound
	case ConfirmErrDeadlineExpired:
		return http.StatusGone
	case ConfirmErrAlreadyConfirmed, ConfirmErrNotOnWaitlist, ConfirmErrInsufficientSpots:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (ctrl *controller) GetEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid entry ID", nil, err.Error())
		return
	}

	entry, err := ctrl.service.GetEntry(c.Request.Context(), entryID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist entry retrieved successfully", entry, nil)
}

func (ctrl *controller) ListEntries(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	entries, err := ctrl.service.ListEntries(c.Request.Context(), eventID, EntryStatus(query.Status))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist entries retrieved successfully", entries, nil)
}

func (ctrl *controller) GetStats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	stats, err := ctrl.service.GetStats(c.Request.Context(), eventID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist stats retrieved successfully", stats, nil)
}

func (ctrl *controller) CancelEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid entry ID", nil, err.Error())
		return
	}

	if err := ctrl.service.CancelEntry(c.Request.Context(), entryID); err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist entry cancelled", nil, nil)
}

func (ctrl *controller) PromoteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return
	}

	if err := ctrl.service.PromoteEvent(c.Request.Context(), eventID); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, events.ErrEventNotFound) {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Promotion run completed", nil, nil)
}

func (ctrl *controller) PromoteManually(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid entry ID", nil, err.Error())
		return
	}

	entry, err := ctrl.service.PromoteManually(c.Request.Context(), entryID)
	if err != nil {
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrEntryNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInsufficientFit):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist entry promoted", entry, nil)
}

func (ctrl *controller) MoveDirectly(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid entry ID", nil, err.Error())
		return
	}

	if err := ctrl.service.MoveDirectly(c.Request.Context(), entryID); err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrEntryNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrInvalidState):
			statusCode = http.StatusConflict
		}
		response.RespondJSON(c, "error", statusCode, err.Error(), nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Waitlist entry converted to registration", nil, nil)
}
