package registrations

import (
	"context"
	"errors"
	"fmt"
	"log"

	"vereinsportal/internal/events"
	"vereinsportal/pkg/lock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrChildNotFound        = errors.New("child not found")
)

// EventService is the slice of the events service this package consumes.
type EventService interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	Recompute(ctx context.Context, eventID uuid.UUID) error
}

// Service interface defines the contract for registration business operations
type Service interface {
	CreateRegistration(ctx context.Context, req CreateRegistrationRequest) (*CreateRegistrationResult, error)
	GetRegistration(ctx context.Context, id uuid.UUID) (*RegistrationResponse, error)
	GetRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]RegistrationResponse, error)
	DeleteRegistration(ctx context.Context, id uuid.UUID) error
	RemoveChild(ctx context.Context, registrationID, childID uuid.UUID) error

	// CreateFromWaitlist inserts a registration straight from a waitlist
	// snapshot. No capacity check and no recompute: the caller holds the
	// event lock and chains the recompute itself.
	CreateFromWaitlist(ctx context.Context, registration *Registration) error
}

type service struct {
	repo         Repository
	eventService EventService
	locker       lock.EventLocker
}

func NewService(repo Repository, eventService EventService, locker lock.EventLocker) Service {
	return &service{
		repo:         repo,
		eventService: eventService,
		locker:       locker,
	}
}

func (s *service) CreateRegistration(ctx context.Context, req CreateRegistrationRequest) (*CreateRegistrationResult, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, errors.New("invalid event ID")
	}

	event, err := s.eventService.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.Status.AcceptsRegistrations() {
		return nil, fmt.Errorf("event %q is not open for registration", event.Title)
	}

	// Eligibility: age bounds are checked against the event date, not today.
	for _, child := range req.Children {
		age := AgeAt(child.DateOfBirth, event.Date)
		if event.MinAge != nil && age < *event.MinAge {
			return nil, fmt.Errorf("%s %s will be %d at the event date, minimum age is %d",
				child.FirstName, child.LastName, age, *event.MinAge)
		}
		if event.MaxAge != nil && age > *event.MaxAge {
			return nil, fmt.Errorf("%s %s will be %d at the event date, maximum age is %d",
				child.FirstName, child.LastName, age, *event.MaxAge)
		}
	}

	registration := buildRegistration(eventID, req)

	// The capacity check and the insert run under the event lock so two
	// concurrent intakes cannot both squeeze into the last spots.
	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock event %s: %w", eventID, err)
	}

	event, err = s.eventService.GetEvent(ctx, eventID)
	if err != nil {
		unlock()
		return nil, err
	}

	if event.MaxParticipants != nil {
		available := *event.MaxParticipants - event.ParticipantCount
		if len(req.Children) > available {
			unlock()
			return &CreateRegistrationResult{
				Registered:    false,
				WaitlistOffer: true,
				Message:       fmt.Sprintf("%q has no room for %d more children; the family can join the waitlist", event.Title, len(req.Children)),
			}, nil
		}
	}

	if err := s.repo.Create(ctx, registration); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	log.Printf("registration %s created for event %s with %d children",
		registration.ID, eventID, len(registration.Children))

	if err := s.eventService.Recompute(ctx, eventID); err != nil {
		log.Printf("recompute after registration %s failed: %v", registration.ID, err)
	}

	response := registration.ToResponse(event.Date)
	return &CreateRegistrationResult{
		Registered:   true,
		Registration: &response,
		Message:      "Registration created successfully",
	}, nil
}

func (s *service) GetRegistration(ctx context.Context, id uuid.UUID) (*RegistrationResponse, error) {
	registration, err := s.getRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	event, err := s.eventService.GetEvent(ctx, registration.EventID)
	if err != nil {
		return nil, err
	}

	response := registration.ToResponse(event.Date)
	return &response, nil
}

func (s *service) GetRegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]RegistrationResponse, error) {
	event, err := s.eventService.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	registrations, err := s.repo.GetByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	responses := make([]RegistrationResponse, len(registrations))
	for i, registration := range registrations {
		responses[i] = registration.ToResponse(event.Date)
	}
	return responses, nil
}

func (s *service) DeleteRegistration(ctx context.Context, id uuid.UUID) error {
	registration, err := s.getRegistration(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("registration %s cancelled for event %s", id, registration.EventID)

	// Freed capacity flows to the waitlist through the ledger.
	if err := s.eventService.Recompute(ctx, registration.EventID); err != nil {
		log.Printf("recompute after cancellation of %s failed: %v", id, err)
	}

	return nil
}

func (s *service) RemoveChild(ctx context.Context, registrationID, childID uuid.UUID) error {
	registration, err := s.getRegistration(ctx, registrationID)
	if err != nil {
		return err
	}

	if _, err := s.repo.GetChild(ctx, registrationID, childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChildNotFound
		}
		return fmt.Errorf("failed to get child: %w", err)
	}

	if err := s.repo.DeleteChild(ctx, childID); err != nil {
		return err
	}

	remaining, err := s.repo.CountChildren(ctx, registrationID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		// Last child removed: the registration itself goes too.
		if err := s.repo.Delete(ctx, registrationID); err != nil {
			return err
		}
		log.Printf("registration %s deleted after last child removed", registrationID)
	}

	if err := s.eventService.Recompute(ctx, registration.EventID); err != nil {
		log.Printf("recompute after child removal from %s failed: %v", registrationID, err)
	}

	return nil
}

func (s *service) CreateFromWaitlist(ctx context.Context, registration *Registration) error {
	return s.repo.Create(ctx, registration)
}

func (s *service) getRegistration(ctx context.Context, id uuid.UUID) (*Registration, error) {
	registration, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return registration, nil
}

func buildRegistration(eventID uuid.UUID, req CreateRegistrationRequest) *Registration {
	children := make([]Child, len(req.Children))
	for i, child := range req.Children {
		children[i] = Child{
			FirstName:    child.FirstName,
			LastName:     child.LastName,
			DateOfBirth:  child.DateOfBirth,
			Gender:       child.Gender,
			PickupInfo:   child.PickupInfo,
			PhotoConsent: child.PhotoConsent,
			HealthInfo:   child.HealthInfo,
		}
	}

	return &Registration{
		EventID:    eventID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		Notes:      req.Notes,
		Children:   children,
	}
}
