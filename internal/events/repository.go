package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for event data operations
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountRegisteredChildren sums children across all registrations for the
	// event. Waitlist entries are stored in their own table and therefore
	// never count.
	CountRegisteredChildren(ctx context.Context, eventID uuid.UUID) (int, error)

	// WriteDerivedCounts persists the recomputed participant_count / is_full.
	WriteDerivedCounts(ctx context.Context, eventID uuid.UUID, count int, isFull bool) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.From != "" {
		if from, err := time.Parse("2006-01-02", query.From); err == nil {
			db = db.Where("date >= ?", from)
		}
	}
	if query.To != "" {
		if to, err := time.Parse("2006-01-02", query.To); err == nil {
			db = db.Where("date <= ?", to)
		}
	}

	var totalCount int64
	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var events []Event
	offset := (query.Page - 1) * query.Limit
	err := db.Order("date ASC").Offset(offset).Limit(query.Limit).Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, totalCount, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error) {
	err := r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (r *repository) CountRegisteredChildren(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("children").
		Joins("JOIN registrations ON registrations.id = children.registration_id").
		Where("registrations.event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count registered children: %w", err)
	}
	return int(count), nil
}

func (r *repository) WriteDerivedCounts(ctx context.Context, eventID uuid.UUID, count int, isFull bool) error {
	err := r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"participant_count": count,
			"is_full":           isFull,
			"updated_at":        time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to write derived counts: %w", err)
	}
	return nil
}
