package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a dated activity with an optional capacity limit, counted in
// children. ParticipantCount and IsFull are derived fields: they are written
// exclusively by the recompute step, never directly by a request handler.
type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `json:"title" gorm:"not null;size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Location    string    `json:"location" gorm:"size:255"`
	Date        time.Time `json:"date" gorm:"not null"`

	// MaxParticipants is nil for unlimited events. Unlimited events never
	// hold a waitlist and never promote.
	MaxParticipants *int `json:"max_participants,omitempty" gorm:"check:max_participants > 0"`

	// Optional eligibility bounds, enforced at registration time against the
	// child's age on the event date.
	MinAge *int `json:"min_age,omitempty"`
	MaxAge *int `json:"max_age,omitempty"`

	// Derived: sum of children across non-waitlisted registrations.
	ParticipantCount int  `json:"participant_count" gorm:"not null;default:0;check:participant_count >= 0"`
	IsFull           bool `json:"is_full" gorm:"not null;default:false"`

	Status EventStatus `json:"status" gorm:"type:varchar(20);default:'DRAFT'"`

	CreatedBy *uuid.UUID `json:"created_by,omitempty" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// AvailableSpots returns the free capacity, or -1 for unlimited events.
func (e *Event) AvailableSpots() int {
	if e.MaxParticipants == nil {
		return -1
	}
	spots := *e.MaxParticipants - e.ParticipantCount
	if spots < 0 {
		spots = 0
	}
	return spots
}

// Unlimited returns true when the event has no capacity limit.
func (e *Event) Unlimited() bool {
	return e.MaxParticipants == nil
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

// Request/Response models

type CreateEventRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=255"`
	Description     string    `json:"description" binding:"max=2000"`
	Location        string    `json:"location" binding:"max=255"`
	Date            time.Time `json:"date" binding:"required"`
	MaxParticipants *int      `json:"max_participants" binding:"omitempty,min=1,max=10000"`
	MinAge          *int      `json:"min_age" binding:"omitempty,min=0,max=18"`
	MaxAge          *int      `json:"max_age" binding:"omitempty,min=0,max=18"`
	Status          *string   `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

type UpdateEventRequest struct {
	Title           *string    `json:"title" binding:"omitempty,min=3,max=255"`
	Description     *string    `json:"description" binding:"omitempty,max=2000"`
	Location        *string    `json:"location" binding:"omitempty,max=255"`
	Date            *time.Time `json:"date"`
	MaxParticipants *int       `json:"max_participants" binding:"omitempty,min=1,max=10000"`
	MinAge          *int       `json:"min_age" binding:"omitempty,min=0,max=18"`
	MaxAge          *int       `json:"max_age" binding:"omitempty,min=0,max=18"`
	Status          *string    `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED CANCELLED COMPLETED"`
}

type EventResponse struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Location         string      `json:"location"`
	Date             time.Time   `json:"date"`
	MaxParticipants  *int        `json:"max_participants,omitempty"`
	MinAge           *int        `json:"min_age,omitempty"`
	MaxAge           *int        `json:"max_age,omitempty"`
	ParticipantCount int         `json:"participant_count"`
	AvailableSpots   *int        `json:"available_spots,omitempty"`
	IsFull           bool        `json:"is_full"`
	Status           EventStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type EventListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=DRAFT PUBLISHED CANCELLED COMPLETED"`
	From   string `form:"from"`
	To     string `form:"to"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// ToResponse converts an Event to its API representation
func (e *Event) ToResponse() EventResponse {
	resp := EventResponse{
		ID:               e.ID.String(),
		Title:            e.Title,
		Description:      e.Description,
		Location:         e.Location,
		Date:             e.Date,
		MaxParticipants:  e.MaxParticipants,
		MinAge:           e.MinAge,
		MaxAge:           e.MaxAge,
		ParticipantCount: e.ParticipantCount,
		IsFull:           e.IsFull,
		Status:           e.Status,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.MaxParticipants != nil {
		spots := e.AvailableSpots()
		resp.AvailableSpots = &spots
	}
	return resp
}
