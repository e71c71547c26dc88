package registrations

import (
	"time"

	"github.com/google/uuid"
)

// Registration is one family's capacity-counted signup for an event.
type Registration struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	FirstName  string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName   string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Email      string    `gorm:"type:varchar(255);index;not null" json:"email"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	Street     string    `gorm:"type:varchar(255)" json:"street"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	City       string    `gorm:"type:varchar(100)" json:"city"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Children []Child `json:"children" gorm:"foreignKey:RegistrationID;constraint:OnDelete:CASCADE;"`
}

// Child belongs to a registration. Age is always derived against the event
// date, never against today.
type Child struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RegistrationID uuid.UUID `gorm:"type:uuid;index;not null" json:"registration_id"`
	FirstName      string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName       string    `gorm:"type:varchar(100);not null" json:"last_name"`
	DateOfBirth    time.Time `gorm:"not null" json:"date_of_birth"`
	Gender         string    `gorm:"type:varchar(20)" json:"gender,omitempty"`
	PickupInfo     string    `gorm:"type:text" json:"pickup_info,omitempty"`
	PhotoConsent   bool      `gorm:"default:false" json:"photo_consent"`
	HealthInfo     string    `gorm:"type:text" json:"health_info,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName sets the table name for Registration
func (Registration) TableName() string {
	return "registrations"
}

// TableName sets the table name for Child
func (Child) TableName() string {
	return "children"
}

// AgeAt returns the child's age in completed years on the given date,
// accounting for a birthday that has not yet been reached.
func (c *Child) AgeAt(date time.Time) int {
	return AgeAt(c.DateOfBirth, date)
}

func AgeAt(dateOfBirth, date time.Time) int {
	age := date.Year() - dateOfBirth.Year()
	if date.Month() < dateOfBirth.Month() ||
		(date.Month() == dateOfBirth.Month() && date.Day() < dateOfBirth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ChildRequest carries one child in a registration request
type ChildRequest struct {
	FirstName    string    `json:"first_name" binding:"required,min=1,max=100"`
	LastName     string    `json:"last_name" binding:"required,min=1,max=100"`
	DateOfBirth  time.Time `json:"date_of_birth" binding:"required"`
	Gender       string    `json:"gender" binding:"omitempty,oneof=male female other"`
	PickupInfo   string    `json:"pickup_info" binding:"max=1000"`
	PhotoConsent bool      `json:"photo_consent"`
	HealthInfo   string    `json:"health_info" binding:"max=2000"`
}

// CreateRegistrationRequest is the registration intake payload
type CreateRegistrationRequest struct {
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

// ChildResponse mirrors Child with the derived age included
type ChildResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender,omitempty"`
	PickupInfo   string    `json:"pickup_info,omitempty"`
	PhotoConsent bool      `json:"photo_consent"`
	HealthInfo   string    `json:"health_info,omitempty"`
}

type RegistrationResponse struct {
	ID         string          `json:"id"`
	EventID    string          `json:"event_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone,omitempty"`
	Street     string          `json:"street,omitempty"`
	PostalCode string          `json:"postal_code,omitempty"`
	City       string          `json:"city,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	Children   []ChildResponse `json:"children"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreateRegistrationResult distinguishes a successful registration from a
// full-event outcome where the caller should be offered the waitlist.
type CreateRegistrationResult struct {
	Registered    bool                  `json:"registered"`
	Registration  *RegistrationResponse `json:"registration,omitempty"`
	WaitlistOffer bool                  `json:"waitlist_offer"`
	Message       string                `json:"message"`
}

// ToResponse converts a Registration with the derived child ages for the
// given event date.
func (r *Registration) ToResponse(eventDate time.Time) RegistrationResponse {
	children := make([]ChildResponse, len(r.Children))
	for i, child := range r.Children {
		children[i] = ChildResponse{
			ID:           child.ID.String(),
			FirstName:    child.FirstName,
			LastName:     child.LastName,
			DateOfBirth:  child.DateOfBirth,
			Age:          child.AgeAt(eventDate),
			Gender:       child.Gender,
			PickupInfo:   child.PickupInfo,
			PhotoConsent: child.PhotoConsent,
			HealthInfo:   child.HealthInfo,
		}
	}

	return RegistrationResponse{
		ID:         r.ID.String(),
		EventID:    r.EventID.String(),
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Street:     r.Street,
		PostalCode: r.PostalCode,
		City:       r.City,
		Notes:      r.Notes,
		Children:   children,
		CreatedAt:  r.CreatedAt,
	}
}
