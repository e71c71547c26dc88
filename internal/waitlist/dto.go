package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// ChildRequest carries one child when joining the waitlist
type ChildRequest struct {
	FirstName    string    `json:"first_name" binding:"required,min=1,max=100"`
	LastName     string    `json:"last_name" binding:"required,min=1,max=100"`
	DateOfBirth  time.Time `json:"date_of_birth" binding:"required"`
	Gender       string    `json:"gender" binding:"omitempty,oneof=male female other"`
	PickupInfo   string    `json:"pickup_info" binding:"max=1000"`
	PhotoConsent bool      `json:"photo_consent"`
	HealthInfo   string    `json:"health_info" binding:"max=2000"`
}

// JoinWaitlistRequest represents a family joining an event's waitlist
type JoinWaitlistRequest struct {
	EventID    string         `json:"event_id" binding:"required,uuid"`
	FirstName  string         `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string         `json:"last_name" binding:"required,min=1,max=100"`
	Email      string         `json:"email" binding:"required,email"`
	Phone      string         `json:"phone" binding:"max=50"`
	Street     string         `json:"street" binding:"max=255"`
	PostalCode string         `json:"postal_code" binding:"max=20"`
	City       string         `json:"city" binding:"max=100"`
	Notes      string         `json:"notes" binding:"max=2000"`
	Children   []ChildRequest `json:"children" binding:"required,min=1,max=10,dive"`
}

// EntryResponse represents a waitlist entry in API responses
type EntryResponse struct {
	ID                   uuid.UUID      `json:"id"`
	EventID              uuid.UUID      `json:"event_id"`
	Parent               ParentSnapshot `json:"parent"`
	Children             ChildSnapshots `json:"children"`
	ChildrenCount        int            `json:"children_count"`
	Status               EntryStatus    `json:"status"`
	QueuePosition        int            `json:"queue_position"`
	PromotionSentAt      *time.Time     `json:"promotion_sent_at,omitempty"`
	ConfirmationDeadline *time.Time     `json:"confirmation_deadline,omitempty"`
	ConfirmedAt          *time.Time     `json:"confirmed_at,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
}

// ToResponse converts a WaitlistEntry to its API representation
func (we *WaitlistEntry) ToResponse() EntryResponse {
	return EntryResponse{
		ID:                   we.ID,
		EventID:              we.EventID,
		Parent:               we.Parent,
		Children:             we.Children,
		ChildrenCount:        we.ChildrenCount,
		Status:               we.Status,
		QueuePosition:        we.QueuePosition,
		PromotionSentAt:      we.PromotionSentAt,
		ConfirmationDeadline: we.ConfirmationDeadline,
		ConfirmedAt:          we.ConfirmedAt,
		CreatedAt:            we.CreatedAt,
	}
}

// ListQuery filters the admin waitlist listing
type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=PENDING PROMOTED CONFIRMED EXPIRED CANCELLED"`
}

// StatsResponse represents waitlist statistics for an event
type StatsResponse struct {
	EventID         uuid.UUID `json:"event_id"`
	TotalEntries    int       `json:"total_entries"`
	PendingCount    int       `json:"pending_count"`
	PromotedCount   int       `json:"promoted_count"`
	ConfirmedCount  int       `json:"confirmed_count"`
	ExpiredCount    int       `json:"expired_count"`
	CancelledCount  int       `json:"cancelled_count"`
	ChildrenWaiting int       `json:"children_waiting"`
}

// ConfirmError is the machine-readable reason a confirmation was rejected
type ConfirmError string

const (
	ConfirmErrMissingToken      ConfirmError = "missing_token"
	ConfirmErrNotFound          ConfirmError = "not_found"
	ConfirmErrInvalidToken      ConfirmError = "invalid_token"
	ConfirmErrAlreadyConfirmed  ConfirmError = "already_confirmed"
	ConfirmErrDeadlineExpired   ConfirmError = "deadline_expired"
	ConfirmErrNotOnWaitlist     ConfirmError = "not_on_waitlist"
	ConfirmErrInsufficientSpots ConfirmError = "insufficient_spots"
	ConfirmErrServer            ConfirmError = "server_error"
)

// ConfirmResult is the discriminated outcome of a confirmation attempt.
// Failures are values, not errors: the handler always answers the caller.
type ConfirmResult struct {
	Success    bool         `json:"success"`
	Error      ConfirmError `json:"error,omitempty"`
	Message    string       `json:"message"`
	EventTitle string       `json:"event_title,omitempty"`
}
