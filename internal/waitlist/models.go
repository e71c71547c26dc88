package waitlist

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ParentSnapshot is the denormalized copy of the registering parent stored on
// a waitlist entry. It is a value copy, not a reference: the entry must
// survive deletion or edits of any original registration.
type ParentSnapshot struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Value implements the driver.Valuer interface for database storage
func (p ParentSnapshot) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for database retrieval
func (p *ParentSnapshot) Scan(value interface{}) error {
	if value == nil {
		*p = ParentSnapshot{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, p)
}

// GormDataType tells GORM how to handle this type
func (ParentSnapshot) GormDataType() string {
	return "jsonb"
}

// ChildSnapshot is one child in the denormalized family copy.
type ChildSnapshot struct {
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Gender       string    `json:"gender,omitempty"`
	PickupInfo   string    `json:"pickup_info,omitempty"`
	PhotoConsent bool      `json:"photo_consent"`
	HealthInfo   string    `json:"health_info,omitempty"`
}

// ChildSnapshots is the jsonb-stored children array of a waitlist entry.
type ChildSnapshots []ChildSnapshot

// Value implements the driver.Valuer interface for database storage
func (c ChildSnapshots) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal([]ChildSnapshot{})
	}
	return json.Marshal(c)
}

// Scan implements the sql.Scanner interface for database retrieval
func (c *ChildSnapshots) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, c)
}

// GormDataType tells GORM how to handle this type
func (ChildSnapshots) GormDataType() string {
	return "jsonb"
}

// EntryStatus represents the status of a waitlist entry
type EntryStatus string

const (
	StatusPending   EntryStatus = "PENDING"
	StatusPromoted  EntryStatus = "PROMOTED"
	StatusConfirmed EntryStatus = "CONFIRMED"
	StatusExpired   EntryStatus = "EXPIRED"
	StatusCancelled EntryStatus = "CANCELLED"
)

// IsValid checks if the entry status is valid
func (s EntryStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPromoted, StatusConfirmed, StatusExpired, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to the target status.
// A lapsed promotion goes back to PENDING so the family re-competes at its
// original queue position.
func (s EntryStatus) CanTransitionTo(target EntryStatus) bool {
	validTransitions := map[EntryStatus][]EntryStatus{
		// PENDING -> CONFIRMED only happens through the admin move-directly
		// override, never through the token flow.
		StatusPending:   {StatusPromoted, StatusConfirmed, StatusCancelled},
		StatusPromoted:  {StatusConfirmed, StatusExpired, StatusPending, StatusCancelled},
		StatusExpired:   {StatusPending, StatusCancelled},
		StatusConfirmed: {}, // Terminal state
		StatusCancelled: {}, // Terminal state
	}

	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// WaitlistEntry represents one family waiting for a spot in an event
type WaitlistEntry struct {
	ID       uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID  uuid.UUID      `json:"event_id" gorm:"type:uuid;not null;index"`
	Parent   ParentSnapshot `json:"parent" gorm:"type:jsonb;not null"`
	Children ChildSnapshots `json:"children" gorm:"type:jsonb;not null"`

	// ChildrenCount mirrors len(Children) at creation time and never changes
	// afterwards: the snapshot is frozen, so is its count.
	ChildrenCount int `json:"children_count" gorm:"not null"`

	Status        EntryStatus `json:"status" gorm:"type:varchar(20);not null;index;default:'PENDING'"`
	QueuePosition int         `json:"queue_position" gorm:"not null;index;default:0"`

	PromotionSentAt      *time.Time `json:"promotion_sent_at,omitempty"`
	ConfirmationDeadline *time.Time `json:"confirmation_deadline,omitempty"`
	ConfirmedAt          *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt            *time.Time `json:"expired_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for WaitlistEntry
func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}

// IsPending returns true while the family is waiting in the queue
func (we *WaitlistEntry) IsPending() bool {
	return we.Status == StatusPending
}

// IsPromoted returns true while a confirmation offer is outstanding
func (we *WaitlistEntry) IsPromoted() bool {
	return we.Status == StatusPromoted
}

// DeadlinePassed reports whether an outstanding offer has lapsed at the
// given instant.
func (we *WaitlistEntry) DeadlinePassed(now time.Time) bool {
	return we.ConfirmationDeadline != nil && now.After(*we.ConfirmationDeadline)
}

// NotificationKind represents the type of an outbound waitlist notification
type NotificationKind string

const (
	NotificationKindPromotionOffer NotificationKind = "PROMOTION_OFFER"
	NotificationKindExpiryNotice   NotificationKind = "EXPIRY_NOTICE"
	NotificationKindConfirmed      NotificationKind = "CONFIRMATION_RECEIPT"
)

// NotificationStatus represents the delivery status of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// WaitlistNotification is the audit record of one outbound notification
type WaitlistNotification struct {
	ID              uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WaitlistEntryID uuid.UUID          `json:"waitlist_entry_id" gorm:"type:uuid;not null;index"`
	EventID         uuid.UUID          `json:"event_id" gorm:"type:uuid;not null;index"`
	Kind            NotificationKind   `json:"kind" gorm:"type:varchar(50);not null"`
	Recipient       string             `json:"recipient" gorm:"type:varchar(255);not null"`
	Status          NotificationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage    *string            `json:"error_message,omitempty"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for WaitlistNotification
func (WaitlistNotification) TableName() string {
	return "waitlist_notifications"
}

// GetPositionKey returns the Redis key mirroring an event's queue positions
func GetPositionKey(eventID uuid.UUID) string {
	return "waitlist:positions:" + eventID.String()
}
