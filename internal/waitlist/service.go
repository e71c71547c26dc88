package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"vereinsportal/internal/events"
	"vereinsportal/internal/registrations"
	"vereinsportal/pkg/lock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEntryNotFound    = errors.New("waitlist entry not found")
	ErrInvalidState     = errors.New("entry is not in a promotable state")
	ErrInsufficientFit  = errors.New("family does not fit in the remaining capacity")
	ErrEventNotLimited  = errors.New("event has no capacity limit, register directly")
	ErrEventHasCapacity = errors.New("event still has room, register directly")
)

// Settings is the promotion configuration snapshot read at call time, so a
// toggle of the auto-promotion flag applies to the next run without a
// restart.
type Settings struct {
	Secret        string
	Deadline      time.Duration
	AutoPromotion bool
	PublicBaseURL string
	AdminEmail    string
}

// SettingsProvider yields the current settings for one engine run.
type SettingsProvider func() Settings

// EventService is the slice of the events service this package consumes.
type EventService interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	Recompute(ctx context.Context, eventID uuid.UUID) error
}

// RegistrationService creates registrations from waitlist snapshots.
type RegistrationService interface {
	CreateFromWaitlist(ctx context.Context, registration *registrations.Registration) error
}

// PromotionOffer is the payload of a confirmation-link notification.
type PromotionOffer struct {
	EventTitle    string
	ParentName    string
	ChildrenCount int
	ConfirmURL    string
	Deadline      time.Time
}

// ExpiryNotice tells an administrator a promotion lapsed unconfirmed.
type ExpiryNotice struct {
	EventTitle    string
	ParentName    string
	ChildrenCount int
	EntryID       uuid.UUID
}

// ConfirmationReceipt acknowledges a successful confirmation to the family.
type ConfirmationReceipt struct {
	EventTitle    string
	ParentName    string
	ChildrenCount int
}

// Notifier delivers outbound waitlist notifications. The engine decides when
// and to whom a notification fires; rendering and delivery live elsewhere.
type Notifier interface {
	SendPromotionOffer(ctx context.Context, recipient string, offer PromotionOffer) error
	SendExpiryNotice(ctx context.Context, recipient string, notice ExpiryNotice) error
	SendConfirmationReceipt(ctx context.Context, recipient string, receipt ConfirmationReceipt) error
}

// Service interface defines the contract for waitlist business operations
type Service interface {
	JoinWaitlist(ctx context.Context, req JoinWaitlistRequest) (*EntryResponse, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*EntryResponse, error)
	ListEntries(ctx context.Context, eventID uuid.UUID, status EntryStatus) ([]EntryResponse, error)
	GetStats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error)
	CancelEntry(ctx context.Context, id uuid.UUID) error

	// PromoteEvent walks the event's queue first-fit-in-order and promotes
	// every family that fits the free capacity. Implements the promoter hook
	// the events service calls after a recompute frees spots.
	PromoteEvent(ctx context.Context, eventID uuid.UUID) error

	// PromoteManually promotes one entry on admin request, bypassing the
	// auto-promotion flag but not the capacity check.
	PromoteManually(ctx context.Context, entryID uuid.UUID) (*EntryResponse, error)

	// MoveDirectly converts an entry straight into a registration without
	// token or capacity check. Explicit admin capacity override.
	MoveDirectly(ctx context.Context, entryID uuid.UUID) error

	// Confirm resolves a confirmation link. Rejections are result values
	// with a reason code, never raw errors.
	Confirm(ctx context.Context, entryID uuid.UUID, token string) ConfirmResult

	// Sweep returns lapsed promotions to the queue and re-runs promotion
	// once per affected event.
	Sweep(ctx context.Context) error
}

type service struct {
	repo                Repository
	eventService        EventService
	registrationService RegistrationService
	notifier            Notifier
	locker              lock.EventLocker
	settings            SettingsProvider
	now                 func() time.Time
}

func NewService(
	repo Repository,
	eventService EventService,
	registrationService RegistrationService,
	notifier Notifier,
	locker lock.EventLocker,
	settings SettingsProvider,
) Service {
	return &service{
		repo:                repo,
		eventService:        eventService,
		registrationService: registrationService,
		notifier:            notifier,
		locker:              locker,
		settings:            settings,
		now:                 time.Now,
	}
}

func (s *service) JoinWaitlist(ctx context.Context, req JoinWaitlistRequest) (*EntryResponse, error) {
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
	if event.MaxParticipants == nil {
		return nil, ErrEventNotLimited
	}

	// Same eligibility rules as direct registration.
	for _, child := range req.Children {
		age := registrations.AgeAt(child.DateOfBirth, event.Date)
		if event.MinAge != nil && age < *event.MinAge {
			return nil, fmt.Errorf("%s %s will be %d at the event date, minimum age is %d",
				child.FirstName, child.LastName, age, *event.MinAge)
		}
		if event.MaxAge != nil && age > *event.MaxAge {
			return nil, fmt.Errorf("%s %s will be %d at the event date, maximum age is %d",
				child.FirstName, child.LastName, age, *event.MaxAge)
		}
	}

	available := *event.MaxParticipants - event.ParticipantCount
	if len(req.Children) <= available {
		return nil, ErrEventHasCapacity
	}

	entry := &WaitlistEntry{
		EventID: eventID,
		Parent: ParentSnapshot{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Phone:      req.Phone,
			Street:     req.Street,
			PostalCode: req.PostalCode,
			City:       req.City,
			Notes:      req.Notes,
		},
		Children:  snapshotChildren(req.Children),
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.repo.RecomputePositions(ctx, eventID); err != nil {
		log.Printf("position recompute after join for event %s failed: %v", eventID, err)
	}

	log.Printf("waitlist entry %s created for event %s with %d children",
		entry.ID, eventID, entry.ChildrenCount)

	created, err := s.repo.GetEntryByID(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	response := created.ToResponse()
	return &response, nil
}

func (s *service) GetEntry(ctx context.Context, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	response := entry.ToResponse()
	return &response, nil
}

func (s *service) ListEntries(ctx context.Context, eventID uuid.UUID, status EntryStatus) ([]EntryResponse, error) {
	if _, err := s.eventService.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntries(ctx, eventID, status)
	if err != nil {
		return nil, err
	}

	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = entry.ToResponse()
	}
	return responses, nil
}

func (s *service) GetStats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error) {
	if _, err := s.eventService.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.GetStats(ctx, eventID)
}

func (s *service) CancelEntry(ctx context.Context, id uuid.UUID) error {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return err
	}

	wasPromoted := entry.IsPromoted()

	ok, err := s.repo.MarkCancelled(ctx, id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("entry %s cannot be cancelled from status %s", id, entry.Status)
	}

	if err := s.repo.RecomputePositions(ctx, entry.EventID); err != nil {
		log.Printf("position recompute after cancel of %s failed: %v", id, err)
	}

	log.Printf("waitlist entry %s cancelled for event %s", id, entry.EventID)

	// A cancelled outstanding offer may leave room for the next family.
	if wasPromoted {
		if err := s.PromoteEvent(ctx, entry.EventID); err != nil {
			log.Printf("promotion after cancel of %s failed: %v", id, err)
		}
	}
	return nil
}

func (s *service) PromoteEvent(ctx context.Context, eventID uuid.UUID) error {
	settings := s.settings()
	if !settings.AutoPromotion {
		log.Printf("auto-promotion disabled, skipping event %s", eventID)
		return nil
	}
	return s.promote(ctx, eventID, settings)
}

// promote is the engine itself. The whole scan-and-promote walk holds the
// event lock so two concurrent runs can never both spend the same spots.
func (s *service) promote(ctx context.Context, eventID uuid.UUID, settings Settings) error {
	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to lock event %s: %w", eventID, err)
	}

	promoted, err := s.promoteLocked(ctx, eventID, settings)
	unlock()
	if err != nil {
		return err
	}

	if len(promoted) > 0 {
		if err := s.repo.RecomputePositions(ctx, eventID); err != nil {
			log.Printf("position recompute after promotion for event %s failed: %v", eventID, err)
		}
	}

	// Offers go out after the lock is released; a slow mail server must not
	// stall the queue.
	for _, entry := range promoted {
		s.sendPromotionOffer(ctx, entry, settings)
	}
	return nil
}

func (s *service) promoteLocked(ctx context.Context, eventID uuid.UUID, settings Settings) ([]WaitlistEntry, error) {
	event, err := s.eventService.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.MaxParticipants == nil {
		return nil, nil
	}

	available := *event.MaxParticipants - event.ParticipantCount
	if available <= 0 {
		return nil, nil
	}

	now := s.now()
	eligible, err := s.repo.GetEligibleForPromotion(ctx, eventID, now)
	if err != nil {
		return nil, err
	}

	deadline := now.Add(settings.Deadline)
	var promoted []WaitlistEntry

	for _, entry := range eligible {
		if available <= 0 {
			break
		}
		// Never admit part of a family: an entry that does not fit is
		// skipped without consuming capacity, a smaller family behind it
		// may still fit.
		if entry.ChildrenCount > available {
			continue
		}

		ok, err := s.repo.MarkPromoted(ctx, entry.ID, now, deadline)
		if err != nil {
			log.Printf("failed to promote entry %s: %v", entry.ID, err)
			continue
		}
		if !ok {
			// Lost a race with a confirm or cancel; the entry no longer
			// qualifies.
			continue
		}

		entry.Status = StatusPromoted
		entry.PromotionSentAt = &now
		entry.ConfirmationDeadline = &deadline
		promoted = append(promoted, entry)
		available -= entry.ChildrenCount

		log.Printf("promoted waitlist entry %s (%d children) for event %s, deadline %s",
			entry.ID, entry.ChildrenCount, eventID, deadline.Format(time.RFC3339))
	}

	return promoted, nil
}

func (s *service) PromoteManually(ctx context.Context, entryID uuid.UUID) (*EntryResponse, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status == StatusConfirmed || (entry.IsPromoted() && !entry.DeadlinePassed(s.now())) {
		return nil, ErrInvalidState
	}

	settings := s.settings()

	unlock, err := s.locker.Lock(ctx, entry.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock event %s: %w", entry.EventID, err)
	}

	event, err := s.eventService.GetEvent(ctx, entry.EventID)
	if err != nil {
		unlock()
		return nil, err
	}

	if event.MaxParticipants != nil {
		available := *event.MaxParticipants - event.ParticipantCount
		if entry.ChildrenCount > available {
			unlock()
			return nil, ErrInsufficientFit
		}
	}

	now := s.now()
	deadline := now.Add(settings.Deadline)
	ok, err := s.repo.MarkPromoted(ctx, entryID, now, deadline)
	unlock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	log.Printf("manually promoted waitlist entry %s for event %s", entryID, entry.EventID)

	if err := s.repo.RecomputePositions(ctx, entry.EventID); err != nil {
		log.Printf("position recompute after manual promotion failed: %v", err)
	}

	entry.Status = StatusPromoted
	entry.PromotionSentAt = &now
	entry.ConfirmationDeadline = &deadline
	s.sendPromotionOffer(ctx, *entry, settings)

	updated, err := s.repo.GetEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	response := updated.ToResponse()
	return &response, nil
}

func (s *service) MoveDirectly(ctx context.Context, entryID uuid.UUID) error {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, entry.EventID)
	if err != nil {
		return fmt.Errorf("failed to lock event %s: %w", entry.EventID, err)
	}

	ok, err := s.repo.MarkConverted(ctx, entryID, s.now())
	if err != nil {
		unlock()
		return err
	}
	if !ok {
		unlock()
		return ErrInvalidState
	}

	if err := s.registrationService.CreateFromWaitlist(ctx, s.buildRegistration(entry)); err != nil {
		unlock()
		return fmt.Errorf("failed to create registration from entry %s: %w", entryID, err)
	}
	unlock()

	// Deliberately past any capacity check: the admin is overriding the
	// limit and the ledger will reflect the real count.
	log.Printf("waitlist entry %s moved directly into event %s by admin override (capacity check bypassed)",
		entryID, entry.EventID)

	if err := s.eventService.Recompute(ctx, entry.EventID); err != nil {
		log.Printf("recompute after direct move of %s failed: %v", entryID, err)
	}
	if err := s.repo.RecomputePositions(ctx, entry.EventID); err != nil {
		log.Printf("position recompute after direct move failed: %v", err)
	}
	return nil
}

func (s *service) Confirm(ctx context.Context, entryID uuid.UUID, token string) ConfirmResult {
	if token == "" {
		return ConfirmResult{
			Error:   ConfirmErrMissingToken,
			Message: "The confirmation link is missing its token.",
		}
	}

	entry, err := s.repo.GetEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ConfirmResult{
				Error:   ConfirmErrNotFound,
				Message: "This confirmation link does not match any waitlist entry.",
			}
		}
		log.Printf("confirm: failed to load entry %s: %v", entryID, err)
		return serverError()
	}

	settings := s.settings()
	if !VerifyConfirmationToken(settings.Secret, entry.ID, entry.CreatedAt, token) {
		return ConfirmResult{
			Error:   ConfirmErrInvalidToken,
			Message: "The confirmation link is invalid.",
		}
	}

	if entry.ConfirmedAt != nil || entry.Status == StatusConfirmed {
		return ConfirmResult{
			Error:   ConfirmErrAlreadyConfirmed,
			Message: "This spot was already confirmed.",
		}
	}

	now := s.now()
	if entry.DeadlinePassed(now) {
		return ConfirmResult{
			Error:   ConfirmErrDeadlineExpired,
			Message: "The confirmation deadline has passed. The family is back on the waitlist.",
		}
	}

	if !entry.IsPromoted() {
		return ConfirmResult{
			Error:   ConfirmErrNotOnWaitlist,
			Message: "This entry is not awaiting confirmation.",
		}
	}

	unlock, err := s.locker.Lock(ctx, entry.EventID)
	if err != nil {
		log.Printf("confirm: failed to lock event %s: %v", entry.EventID, err)
		return serverError()
	}

	event, err := s.eventService.GetEvent(ctx, entry.EventID)
	if err != nil {
		unlock()
		log.Printf("confirm: failed to load event %s: %v", entry.EventID, err)
		return serverError()
	}

	// Capacity may have been consumed since the offer went out.
	if event.MaxParticipants != nil {
		available := *event.MaxParticipants - event.ParticipantCount
		if entry.ChildrenCount > available {
			unlock()
			return ConfirmResult{
				Error:      ConfirmErrInsufficientSpots,
				Message:    "The spots are no longer available. The family stays on the waitlist.",
				EventTitle: event.Title,
			}
		}
	}

	// The conditional update is the replay guard: a second click finds the
	// row already flipped and affects zero rows.
	ok, err := s.repo.MarkConfirmed(ctx, entry.ID, now)
	if err != nil {
		unlock()
		log.Printf("confirm: failed to mark entry %s confirmed: %v", entry.ID, err)
		return serverError()
	}
	if !ok {
		unlock()
		return ConfirmResult{
			Error:   ConfirmErrAlreadyConfirmed,
			Message: "This spot was already confirmed.",
		}
	}

	if err := s.registrationService.CreateFromWaitlist(ctx, s.buildRegistration(entry)); err != nil {
		unlock()
		// The entry is confirmed but the registration write failed; this
		// needs operator attention, the token is spent.
		log.Printf("confirm: entry %s confirmed but registration creation failed: %v", entry.ID, err)
		return serverError()
	}
	unlock()

	log.Printf("waitlist entry %s confirmed for event %s (%d children)",
		entry.ID, entry.EventID, entry.ChildrenCount)

	// Closing the loop: the recompute may free or consume nothing, but it
	// keeps the ledger honest and can cascade further promotions.
	if err := s.eventService.Recompute(ctx, entry.EventID); err != nil {
		log.Printf("recompute after confirmation of %s failed: %v", entry.ID, err)
	}
	if err := s.repo.RecomputePositions(ctx, entry.EventID); err != nil {
		log.Printf("position recompute after confirmation failed: %v", err)
	}

	s.sendConfirmationReceipt(ctx, *entry, event.Title)

	return ConfirmResult{
		Success:    true,
		Message:    fmt.Sprintf("The spot for %d children is confirmed.", entry.ChildrenCount),
		EventTitle: event.Title,
	}
}

func (s *service) Sweep(ctx context.Context) error {
	now := s.now()
	lapsed, err := s.repo.GetLapsedPromotions(ctx, now, 500)
	if err != nil {
		return err
	}
	if len(lapsed) == 0 {
		return nil
	}

	settings := s.settings()
	affected := make(map[uuid.UUID]struct{})

	for _, entry := range lapsed {
		ok, err := s.repo.ResetToPending(ctx, entry.ID, now)
		if err != nil {
			log.Printf("sweep: failed to reset entry %s: %v", entry.ID, err)
			continue
		}
		if !ok {
			// Confirmed or cancelled since the query ran.
			continue
		}

		affected[entry.EventID] = struct{}{}
		log.Printf("sweep: promotion of entry %s lapsed, back to pending at original queue position", entry.ID)

		s.sendExpiryNotice(ctx, entry, settings)
	}

	// One promotion pass per event, not per entry: the freed offers all
	// land in the same queue walk.
	for eventID := range affected {
		if err := s.repo.RecomputePositions(ctx, eventID); err != nil {
			log.Printf("sweep: position recompute for event %s failed: %v", eventID, err)
		}
		if err := s.PromoteEvent(ctx, eventID); err != nil {
			log.Printf("sweep: re-promotion for event %s failed: %v", eventID, err)
		}
	}
	return nil
}

func (s *service) getEntry(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	entry, err := s.repo.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}
	return entry, nil
}

func (s *service) buildRegistration(entry *WaitlistEntry) *registrations.Registration {
	children := make([]registrations.Child, len(entry.Children))
	for i, child := range entry.Children {
		children[i] = registrations.Child{
			FirstName:    child.FirstName,
			LastName:     child.LastName,
			DateOfBirth:  child.DateOfBirth,
			Gender:       child.Gender,
			PickupInfo:   child.PickupInfo,
			PhotoConsent: child.PhotoConsent,
			HealthInfo:   child.HealthInfo,
		}
	}

	return &registrations.Registration{
		EventID:    entry.EventID,
		FirstName:  entry.Parent.FirstName,
		LastName:   entry.Parent.LastName,
		Email:      entry.Parent.Email,
		Phone:      entry.Parent.Phone,
		Street:     entry.Parent.Street,
		PostalCode: entry.Parent.PostalCode,
		City:       entry.Parent.City,
		Notes:      entry.Parent.Notes,
		Children:   children,
	}
}

// ConfirmationURL builds the link delivered with a promotion offer.
func ConfirmationURL(baseURL string, entryID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/confirm/%s?token=%s", strings.TrimSuffix(baseURL, "/"), entryID, token)
}

func (s *service) sendPromotionOffer(ctx context.Context, entry WaitlistEntry, settings Settings) {
	token := ConfirmationToken(settings.Secret, entry.ID, entry.CreatedAt)
	offer := PromotionOffer{
		EventTitle:    s.eventTitle(ctx, entry.EventID),
		ParentName:    entry.Parent.FirstName + " " + entry.Parent.LastName,
		ChildrenCount: entry.ChildrenCount,
		ConfirmURL:    ConfirmationURL(settings.PublicBaseURL, entry.ID, token),
	}
	if entry.ConfirmationDeadline != nil {
		offer.Deadline = *entry.ConfirmationDeadline
	}

	s.deliver(ctx, entry, NotificationKindPromotionOffer, entry.Parent.Email, func() error {
		return s.notifier.SendPromotionOffer(ctx, entry.Parent.Email, offer)
	})
}

func (s *service) sendExpiryNotice(ctx context.Context, entry WaitlistEntry, settings Settings) {
	if settings.AdminEmail == "" {
		return
	}
	notice := ExpiryNotice{
		EventTitle:    s.eventTitle(ctx, entry.EventID),
		ParentName:    entry.Parent.FirstName + " " + entry.Parent.LastName,
		ChildrenCount: entry.ChildrenCount,
		EntryID:       entry.ID,
	}

	s.deliver(ctx, entry, NotificationKindExpiryNotice, settings.AdminEmail, func() error {
		return s.notifier.SendExpiryNotice(ctx, settings.AdminEmail, notice)
	})
}

func (s *service) sendConfirmationReceipt(ctx context.Context, entry WaitlistEntry, eventTitle string) {
	receipt := ConfirmationReceipt{
		EventTitle:    eventTitle,
		ParentName:    entry.Parent.FirstName + " " + entry.Parent.LastName,
		ChildrenCount: entry.ChildrenCount,
	}

	s.deliver(ctx, entry, NotificationKindConfirmed, entry.Parent.Email, func() error {
		return s.notifier.SendConfirmationReceipt(ctx, entry.Parent.Email, receipt)
	})
}

// deliver records the notification attempt and hands it to the notifier.
// Failures are logged and recorded, never surfaced: a dead mail server must
// not derail a promotion walk.
func (s *service) deliver(ctx context.Context, entry WaitlistEntry, kind NotificationKind, recipient string, send func() error) {
	record := &WaitlistNotification{
		WaitlistEntryID: entry.ID,
		EventID:         entry.EventID,
		Kind:            kind,
		Recipient:       recipient,
		Status:          NotificationStatusPending,
	}
	if err := s.repo.CreateNotification(ctx, record); err != nil {
		log.Printf("failed to record %s notification for entry %s: %v", kind, entry.ID, err)
	}

	if err := send(); err != nil {
		log.Printf("failed to send %s notification for entry %s: %v", kind, entry.ID, err)
		msg := err.Error()
		record.Status = NotificationStatusFailed
		record.ErrorMessage = &msg
	} else {
		now := s.now()
		record.Status = NotificationStatusSent
		record.SentAt = &now
	}
	if record.ID != uuid.Nil {
		if err := s.repo.UpdateNotification(ctx, record); err != nil {
			log.Printf("failed to update notification record %s: %v", record.ID, err)
		}
	}
}

func (s *service) eventTitle(ctx context.Context, eventID uuid.UUID) string {
	event, err := s.eventService.GetEvent(ctx, eventID)
	if err != nil {
		return ""
	}
	return event.Title
}

func serverError() ConfirmResult {
	return ConfirmResult{
		Error:   ConfirmErrServer,
		Message: "Something went wrong while processing the confirmation.",
	}
}

func snapshotChildren(children []ChildRequest) ChildSnapshots {
	snapshots := make(ChildSnapshots, len(children))
	for i, child := range children {
		snapshots[i] = ChildSnapshot{
			FirstName:    child.FirstName,
			LastName:     child.LastName,
			DateOfBirth:  child.DateOfBirth,
			Gender:       child.Gender,
			PickupInfo:   child.PickupInfo,
			PhotoConsent: child.PhotoConsent,
			HealthInfo:   child.HealthInfo,
		}
	}
	return snapshots
}
