package events

// EventStatus represents the publication state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// IsValid checks if the event status is valid
func (es EventStatus) IsValid() bool {
	switch es {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	default:
		return false
	}
}

// AcceptsRegistrations returns true if registrations may be created for an
// event in this status
func (es EventStatus) AcceptsRegistrations() bool {
	return es == EventStatusPublished
}

// CanBeDeleted returns true if an event in this status may be deleted
func (es EventStatus) CanBeDeleted() bool {
	return es == EventStatusDraft
}
