package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"vereinsportal/pkg/lock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

// WaitlistPromoter is implemented by the waitlist service (interface here to
// avoid an import cycle). Recompute calls it whenever a capacity-limited
// event comes out of a recompute with free spots.
type WaitlistPromoter interface {
	PromoteEvent(ctx context.Context, eventID uuid.UUID) error
}

// Service interface defines the contract for event business operations
type Service interface {
	// Dependency injection
	SetPromoter(promoter WaitlistPromoter)

	CreateEvent(ctx context.Context, createdBy *uuid.UUID, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// GetEvent returns the raw event row for collaborating services.
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)

	// Recompute is the capacity ledger: it re-derives participant_count and
	// is_full from the registration store and chains into promotion when
	// capacity is free. Serialized per event.
	Recompute(ctx context.Context, eventID uuid.UUID) error
}

type service struct {
	repo     Repository
	locker   lock.EventLocker
	promoter WaitlistPromoter
}

func NewService(repo Repository, locker lock.EventLocker) Service {
	return &service{
		repo:   repo,
		locker: locker,
	}
}

// SetPromoter injects the waitlist promoter dependency
func (s *service) SetPromoter(promoter WaitlistPromoter) {
	s.promoter = promoter
}

func (s *service) CreateEvent(ctx context.Context, createdBy *uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	if req.Date.Before(time.Now()) {
		return nil, errors.New("event date must be in the future")
	}
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		return nil, errors.New("min_age must not exceed max_age")
	}

	status := EventStatusDraft
	if req.Status != nil {
		status = EventStatus(*req.Status)
	}

	event := &Event{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Date:            req.Date,
		MaxParticipants: req.MaxParticipants,
		MinAge:          req.MinAge,
		MaxAge:          req.MaxAge,
		Status:          status,
		CreatedBy:       createdBy,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	response := event.ToResponse()
	return &response, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	response := event.ToResponse()
	return &response, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	events, totalCount, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	eventResponses := make([]EventResponse, len(events))
	for i, event := range events {
		eventResponses[i] = event.ToResponse()
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(query.Limit)))

	return &PaginatedEvents{
		Events:     eventResponses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Date != nil {
		if req.Date.Before(time.Now()) {
			return nil, errors.New("event date must be in the future")
		}
		updates["date"] = *req.Date
	}
	if req.MaxParticipants != nil {
		updates["max_participants"] = *req.MaxParticipants
	}
	if req.MinAge != nil {
		updates["min_age"] = *req.MinAge
	}
	if req.MaxAge != nil {
		updates["max_age"] = *req.MaxAge
	}
	if req.Status != nil {
		status := EventStatus(*req.Status)
		if !status.IsValid() {
			return nil, errors.New("invalid event status")
		}
		updates["status"] = status
	}
	updates["updated_at"] = time.Now()

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	// A raised capacity limit may free spots for the waitlist.
	if req.MaxParticipants != nil &&
		(current.MaxParticipants == nil || *req.MaxParticipants != *current.MaxParticipants) {
		if err := s.Recompute(ctx, id); err != nil {
			log.Printf("recompute after capacity change for event %s failed: %v", id, err)
		}
		updated, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reload event: %w", err)
		}
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	if !event.Status.CanBeDeleted() {
		return fmt.Errorf("cannot delete event with status %s", event.Status)
	}

	count, err := s.repo.CountRegisteredChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check event registrations: %w", err)
	}
	if count > 0 {
		return errors.New("cannot delete event with existing registrations")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

// Recompute re-derives the event's participant count from the registration
// store. The read-sum-write sequence runs under the per-event lock so two
// concurrent recomputes cannot interleave stale counts. Promotion is chained
// after the lock is released; Promote takes the same lock itself.
func (s *service) Recompute(ctx context.Context, eventID uuid.UUID) error {
	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to lock event %s: %w", eventID, err)
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		unlock()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	count, err := s.repo.CountRegisteredChildren(ctx, eventID)
	if err != nil {
		unlock()
		return fmt.Errorf("failed to count participants: %w", err)
	}

	isFull := event.MaxParticipants != nil && count >= *event.MaxParticipants

	if err := s.repo.WriteDerivedCounts(ctx, eventID, count, isFull); err != nil {
		unlock()
		return err
	}
	unlock()

	log.Printf("recomputed event %s: participant_count=%d is_full=%t", eventID, count, isFull)

	// Unlimited events never promote; full events have nothing to offer.
	if event.MaxParticipants != nil && !isFull && s.promoter != nil {
		if err := s.promoter.PromoteEvent(ctx, eventID); err != nil {
			log.Printf("promotion after recompute for event %s failed: %v", eventID, err)
		}
	}

	return nil
}
