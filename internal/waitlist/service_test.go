package waitlist

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"vereinsportal/internal/events"
	"vereinsportal/internal/registrations"
	"vereinsportal/pkg/lock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	mu            sync.Mutex
	entries       map[uuid.UUID]*WaitlistEntry
	notifications []*WaitlistNotification
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{entries: make(map[uuid.UUID]*WaitlistEntry)}
}

func (f *fakeRepository) CreateEntry(ctx context.Context, entry *WaitlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.ChildrenCount = len(entry.Children)
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeRepository) GetEntryByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeRepository) sorted(filter func(*WaitlistEntry) bool) []WaitlistEntry {
	var out []WaitlistEntry
	for _, entry := range f.entries {
		if filter(entry) {
			out = append(out, *entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeRepository) ListEntries(ctx context.Context, eventID uuid.UUID, status EntryStatus) ([]WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e *WaitlistEntry) bool {
		return e.EventID == eventID && (status == "" || e.Status == status)
	}), nil
}

func (f *fakeRepository) GetPendingInOrder(ctx context.Context, eventID uuid.UUID) ([]WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e *WaitlistEntry) bool {
		return e.EventID == eventID && e.Status == StatusPending
	}), nil
}

func (f *fakeRepository) GetEligibleForPromotion(ctx context.Context, eventID uuid.UUID, now time.Time) ([]WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(e *WaitlistEntry) bool {
		if e.EventID != eventID {
			return false
		}
		if e.Status == StatusPending {
			return true
		}
		return e.Status == StatusPromoted && e.ConfirmedAt == nil &&
			e.ConfirmationDeadline != nil && e.ConfirmationDeadline.Before(now)
	}), nil
}

func (f *fakeRepository) MarkPromoted(ctx context.Context, id uuid.UUID, now, deadline time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return false, nil
	}
	eligible := entry.Status == StatusPending ||
		(entry.Status == StatusPromoted && entry.ConfirmedAt == nil &&
			entry.ConfirmationDeadline != nil && entry.ConfirmationDeadline.Before(now))
	if !eligible {
		return false, nil
	}
	entry.Status = StatusPromoted
	sentAt := now
	entry.PromotionSentAt = &sentAt
	d := deadline
	entry.ConfirmationDeadline = &d
	return true, nil
}

func (f *fakeRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok || entry.Status != StatusPromoted || entry.ConfirmedAt != nil {
		return false, nil
	}
	entry.Status = StatusConfirmed
	at := confirmedAt
	entry.ConfirmedAt = &at
	return true, nil
}

func (f *fakeRepository) MarkConverted(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok || entry.ConfirmedAt != nil ||
		(entry.Status != StatusPending && entry.Status != StatusPromoted) {
		return false, nil
	}
	entry.Status = StatusConfirmed
	at := confirmedAt
	entry.ConfirmedAt = &at
	return true, nil
}

func (f *fakeRepository) ResetToPending(ctx context.Context, id uuid.UUID, expiredAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok || entry.Status != StatusPromoted {
		return false, nil
	}
	entry.Status = StatusPending
	entry.PromotionSentAt = nil
	entry.ConfirmationDeadline = nil
	at := expiredAt
	entry.ExpiredAt = &at
	return true, nil
}

func (f *fakeRepository) MarkCancelled(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return false, nil
	}
	switch entry.Status {
	case StatusPending, StatusPromoted, StatusExpired:
		entry.Status = StatusCancelled
		at := cancelledAt
		entry.CancelledAt = &at
		return true, nil
	}
	return false, nil
}

func (f *fakeRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
	return nil
}

func (f *fakeRepository) GetLapsedPromotions(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted(func(e *WaitlistEntry) bool {
		return e.Status == StatusPromoted && e.ConfirmedAt == nil &&
			e.ConfirmationDeadline != nil && e.ConfirmationDeadline.Before(now)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepository) RecomputePositions(ctx context.Context, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending := f.sorted(func(e *WaitlistEntry) bool {
		return e.EventID == eventID && e.Status == StatusPending
	})
	for i, entry := range pending {
		f.entries[entry.ID].QueuePosition = i + 1
	}
	for _, entry := range f.entries {
		if entry.EventID == eventID && entry.Status != StatusPending {
			entry.QueuePosition = 0
		}
	}
	return nil
}

func (f *fakeRepository) GetStats(ctx context.Context, eventID uuid.UUID) (*StatsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &StatsResponse{EventID: eventID}
	for _, entry := range f.entries {
		if entry.EventID != eventID {
			continue
		}
		stats.TotalEntries++
		switch entry.Status {
		case StatusPending:
			stats.PendingCount++
			stats.ChildrenWaiting += entry.ChildrenCount
		case StatusPromoted:
			stats.PromotedCount++
		case StatusConfirmed:
			stats.ConfirmedCount++
		case StatusExpired:
			stats.ExpiredCount++
		case StatusCancelled:
			stats.CancelledCount++
		}
	}
	return stats, nil
}

func (f *fakeRepository) CreateNotification(ctx context.Context, notification *WaitlistNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	f.notifications = append(f.notifications, notification)
	return nil
}

func (f *fakeRepository) UpdateNotification(ctx context.Context, notification *WaitlistNotification) error {
	return nil
}

type fakeRegistrationService struct {
	mu      sync.Mutex
	created []*registrations.Registration
	err     error
}

func (f *fakeRegistrationService) CreateFromWaitlist(ctx context.Context, registration *registrations.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, registration)
	return nil
}

func (f *fakeRegistrationService) createdChildren() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, registration := range f.created {
		total += len(registration.Children)
	}
	return total
}

// fakeEventService re-derives the participant count from a base plus the
// registrations the fake registration service accepted, the way the real
// ledger sums the registration store.
type fakeEventService struct {
	mu     sync.Mutex
	event  *events.Event
	base   int
	regSvc *fakeRegistrationService
}

func (f *fakeEventService) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.event == nil || f.event.ID != id {
		return nil, events.ErrEventNotFound
	}
	copied := *f.event
	return &copied, nil
}

func (f *fakeEventService) Recompute(ctx context.Context, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := f.base
	if f.regSvc != nil {
		count += f.regSvc.createdChildren()
	}
	f.event.ParticipantCount = count
	f.event.IsFull = f.event.MaxParticipants != nil && count >= *f.event.MaxParticipants
	return nil
}

func (f *fakeEventService) setBase(base int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.base = base
	count := base
	if f.regSvc != nil {
		count += f.regSvc.createdChildren()
	}
	f.event.ParticipantCount = count
	f.event.IsFull = f.event.MaxParticipants != nil && count >= *f.event.MaxParticipants
}

type sentNotification struct {
	kind      NotificationKind
	recipient string
	offer     PromotionOffer
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) SendPromotionOffer(ctx context.Context, recipient string, offer PromotionOffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{kind: NotificationKindPromotionOffer, recipient: recipient, offer: offer})
	return nil
}

func (f *fakeNotifier) SendExpiryNotice(ctx context.Context, recipient string, notice ExpiryNotice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{kind: NotificationKindExpiryNotice, recipient: recipient})
	return nil
}

func (f *fakeNotifier) SendConfirmationReceipt(ctx context.Context, recipient string, receipt ConfirmationReceipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{kind: NotificationKindConfirmed, recipient: recipient})
	return nil
}

func (f *fakeNotifier) sentOfKind(kind NotificationKind) []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentNotification
	for _, n := range f.sent {
		if n.kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	repo     *fakeRepository
	eventSvc *fakeEventService
	regSvc   *fakeRegistrationService
	notifier *fakeNotifier
	settings *Settings
	svc      *service
	eventID  uuid.UUID
}

func intPtr(v int) *int { return &v }

func newTestEnv(t *testing.T, max *int, participantCount int) *testEnv {
	t.Helper()
	regSvc := &fakeRegistrationService{}
	eventSvc := &fakeEventService{
		event: &events.Event{
			ID:              uuid.New(),
			Title:           "Sommerfreizeit",
			Date:            time.Date(2027, 7, 15, 9, 0, 0, 0, time.UTC),
			MaxParticipants: max,
			Status:          events.EventStatusPublished,
		},
		regSvc: regSvc,
	}
	eventSvc.setBase(participantCount)

	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	settings := &Settings{
		Secret:        "test-secret",
		Deadline:      7 * 24 * time.Hour,
		AutoPromotion: true,
		PublicBaseURL: "https://portal.example.org/api/v1",
		AdminEmail:    "vorstand@example.org",
	}

	svc := NewService(repo, eventSvc, regSvc, notifier, lock.NewKeyedMutex(), func() Settings {
		return *settings
	}).(*service)

	return &testEnv{
		repo:     repo,
		eventSvc: eventSvc,
		regSvc:   regSvc,
		notifier: notifier,
		settings: settings,
		svc:      svc,
		eventID:  eventSvc.event.ID,
	}
}

func (env *testEnv) addEntry(t *testing.T, name string, children int, createdAt time.Time) *WaitlistEntry {
	t.Helper()
	snapshots := make(ChildSnapshots, children)
	for i := range snapshots {
		snapshots[i] = ChildSnapshot{
			FirstName:   name,
			LastName:    "Muster",
			DateOfBirth: time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	entry := &WaitlistEntry{
		EventID: env.eventID,
		Parent: ParentSnapshot{
			FirstName: name,
			LastName:  "Muster",
			Email:     name + "@example.org",
		},
		Children:  snapshots,
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
	if err := env.repo.CreateEntry(context.Background(), entry); err != nil {
		t.Fatalf("seed entry %s: %v", name, err)
	}
	if err := env.repo.RecomputePositions(context.Background(), env.eventID); err != nil {
		t.Fatalf("recompute positions: %v", err)
	}
	return entry
}

func (env *testEnv) entryStatus(t *testing.T, id uuid.UUID) EntryStatus {
	t.Helper()
	entry, err := env.repo.GetEntryByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	return entry.Status
}

var t0 = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

func TestPromoteFirstFitInOrder(t *testing.T) {
	// Queue [A:3, B:1, C:2] with 2 free spots: A is skipped but keeps its
	// place, B fits, then C fits the remainder.
	env := newTestEnv(t, intPtr(10), 8)
	a := env.addEntry(t, "anton", 3, t0)
	b := env.addEntry(t, "berta", 1, t0.Add(time.Minute))
	c := env.addEntry(t, "clara", 2, t0.Add(2*time.Minute))

	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if got := env.entryStatus(t, a.ID); got != StatusPending {
		t.Errorf("A status = %s, want PENDING", got)
	}
	if got := env.entryStatus(t, b.ID); got != StatusPromoted {
		t.Errorf("B status = %s, want PROMOTED", got)
	}
	if got := env.entryStatus(t, c.ID); got != StatusPromoted {
		t.Errorf("C status = %s, want PROMOTED", got)
	}

	// A is now the only pending entry and must sit at position 1.
	entryA, _ := env.repo.GetEntryByID(context.Background(), a.ID)
	if entryA.QueuePosition != 1 {
		t.Errorf("A queue position = %d, want 1", entryA.QueuePosition)
	}

	offers := env.notifier.sentOfKind(NotificationKindPromotionOffer)
	if len(offers) != 2 {
		t.Fatalf("promotion offers sent = %d, want 2", len(offers))
	}
}

func TestPromoteNeverSplitsFamily(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	family := env.addEntry(t, "anton", 3, t0)

	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if got := env.entryStatus(t, family.ID); got != StatusPending {
		t.Errorf("family of 3 with 2 spots: status = %s, want PENDING", got)
	}
	if offers := env.notifier.sentOfKind(NotificationKindPromotionOffer); len(offers) != 0 {
		t.Errorf("offers sent = %d, want 0", len(offers))
	}
}

func TestPromoteIsIdempotent(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 1, t0)

	for i := 0; i < 3; i++ {
		if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
			t.Fatalf("promote %d: %v", i, err)
		}
	}

	// A live promotion is excluded from the eligible set, so only the first
	// run sends an offer.
	if got := env.entryStatus(t, entry.ID); got != StatusPromoted {
		t.Errorf("status = %s, want PROMOTED", got)
	}
	if offers := env.notifier.sentOfKind(NotificationKindPromotionOffer); len(offers) != 1 {
		t.Errorf("offers sent = %d, want 1", len(offers))
	}
}

func TestPromoteRespectsAutoPromotionFlag(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 1, t0)
	env.settings.AutoPromotion = false

	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got := env.entryStatus(t, entry.ID); got != StatusPending {
		t.Errorf("status = %s, want PENDING with auto-promotion off", got)
	}

	// Manual promotion bypasses the flag.
	if _, err := env.svc.PromoteManually(context.Background(), entry.ID); err != nil {
		t.Fatalf("manual promote: %v", err)
	}
	if got := env.entryStatus(t, entry.ID); got != StatusPromoted {
		t.Errorf("status after manual promote = %s, want PROMOTED", got)
	}
}

func TestPromoteManuallyRejectsLivePromotionAndOverCapacity(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	promoted := env.addEntry(t, "berta", 1, t0)
	if _, err := env.svc.PromoteManually(context.Background(), promoted.ID); err != nil {
		t.Fatalf("manual promote: %v", err)
	}
	if _, err := env.svc.PromoteManually(context.Background(), promoted.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("re-promoting a live promotion: err = %v, want ErrInvalidState", err)
	}

	big := env.addEntry(t, "anton", 5, t0.Add(time.Minute))
	if _, err := env.svc.PromoteManually(context.Background(), big.ID); !errors.Is(err, ErrInsufficientFit) {
		t.Errorf("promoting 5 children into 2 spots: err = %v, want ErrInsufficientFit", err)
	}
}

func TestCancellationFreesCapacityForNextInLine(t *testing.T) {
	// Full event (5/5) with D(2 children, t1) and E(1 child, t2) waiting.
	// A registration with 2 children is cancelled: D fits exactly, E stays
	// pending at position 2... then 1.
	env := newTestEnv(t, intPtr(5), 5)
	d := env.addEntry(t, "dora", 2, t0)
	e := env.addEntry(t, "emil", 1, t0.Add(time.Minute))

	env.eventSvc.setBase(3) // the cancellation's recompute result
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	if got := env.entryStatus(t, d.ID); got != StatusPromoted {
		t.Errorf("D status = %s, want PROMOTED", got)
	}
	if got := env.entryStatus(t, e.ID); got != StatusPending {
		t.Errorf("E status = %s, want PENDING", got)
	}
	entryE, _ := env.repo.GetEntryByID(context.Background(), e.ID)
	if entryE.QueuePosition != 1 {
		t.Errorf("E queue position = %d, want 1", entryE.QueuePosition)
	}
}

func TestConfirmHappyPath(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 2, t0)
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	token := ConfirmationToken(env.settings.Secret, entry.ID, entry.CreatedAt)
	result := env.svc.Confirm(context.Background(), entry.ID, token)
	if !result.Success {
		t.Fatalf("confirm failed: %s (%s)", result.Error, result.Message)
	}
	if result.EventTitle != "Sommerfreizeit" {
		t.Errorf("event title = %q", result.EventTitle)
	}
	if got := env.entryStatus(t, entry.ID); got != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got)
	}
	if len(env.regSvc.created) != 1 {
		t.Fatalf("registrations created = %d, want 1", len(env.regSvc.created))
	}
	if len(env.regSvc.created[0].Children) != 2 {
		t.Errorf("registration children = %d, want 2", len(env.regSvc.created[0].Children))
	}
	// The ledger closed the loop: 8 base + 2 confirmed children.
	if env.eventSvc.event.ParticipantCount != 10 {
		t.Errorf("participant count = %d, want 10", env.eventSvc.event.ParticipantCount)
	}
}

func TestConfirmRejectionReasons(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	promoted := env.addEntry(t, "berta", 1, t0)
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	pending := env.addEntry(t, "anton", 3, t0.Add(time.Minute))

	validToken := func(e *WaitlistEntry) string {
		return ConfirmationToken(env.settings.Secret, e.ID, e.CreatedAt)
	}

	tests := []struct {
		name  string
		entry uuid.UUID
		token string
		want  ConfirmError
	}{
		{"missing token", promoted.ID, "", ConfirmErrMissingToken},
		{"unknown entry", uuid.New(), "deadbeef", ConfirmErrNotFound},
		{"tampered token", promoted.ID, validToken(promoted) + "00", ConfirmErrInvalidToken},
		{"token for another entry", promoted.ID, validToken(pending), ConfirmErrInvalidToken},
		{"entry not promoted", pending.ID, validToken(pending), ConfirmErrNotOnWaitlist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.svc.Confirm(context.Background(), tt.entry, tt.token)
			if result.Success {
				t.Fatal("expected rejection")
			}
			if result.Error != tt.want {
				t.Errorf("error = %s, want %s", result.Error, tt.want)
			}
		})
	}
}

func TestConfirmIsSingleUse(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 1, t0)
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	token := ConfirmationToken(env.settings.Secret, entry.ID, entry.CreatedAt)
	first := env.svc.Confirm(context.Background(), entry.ID, token)
	if !first.Success {
		t.Fatalf("first confirm failed: %s", first.Error)
	}

	second := env.svc.Confirm(context.Background(), entry.ID, token)
	if second.Success {
		t.Fatal("replayed confirmation must not succeed")
	}
	if second.Error != ConfirmErrAlreadyConfirmed {
		t.Errorf("error = %s, want already_confirmed", second.Error)
	}
	if len(env.regSvc.created) != 1 {
		t.Errorf("registrations created = %d, want 1", len(env.regSvc.created))
	}
}

func TestConfirmAfterDeadline(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 1, t0)
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	env.svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	token := ConfirmationToken(env.settings.Secret, entry.ID, entry.CreatedAt)
	result := env.svc.Confirm(context.Background(), entry.ID, token)
	if result.Error != ConfirmErrDeadlineExpired {
		t.Errorf("error = %s, want deadline_expired", result.Error)
	}
	if len(env.regSvc.created) != 0 {
		t.Errorf("registrations created = %d, want 0", len(env.regSvc.created))
	}
}

func TestConfirmRechecksCapacity(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 2, t0)
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// Capacity consumed by something else between offer and click.
	env.eventSvc.setBase(9)

	token := ConfirmationToken(env.settings.Secret, entry.ID, entry.CreatedAt)
	result := env.svc.Confirm(context.Background(), entry.ID, token)
	if result.Error != ConfirmErrInsufficientSpots {
		t.Fatalf("error = %s, want insufficient_spots", result.Error)
	}

	// The entry is not deleted: it stays promoted and lapses into the
	// sweeper's re-promotion path.
	if got := env.entryStatus(t, entry.ID); got != StatusPromoted {
		t.Errorf("status = %s, want PROMOTED", got)
	}
	if len(env.regSvc.created) != 0 {
		t.Errorf("registrations created = %d, want 0", len(env.regSvc.created))
	}
}

func TestSweepRequeuesLapsedPromotionsAtOriginalPosition(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 9)
	first := env.addEntry(t, "anton", 1, t0)
	second := env.addEntry(t, "berta", 1, t0.Add(time.Minute))

	// Only the older entry fits the single spot.
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got := env.entryStatus(t, first.ID); got != StatusPromoted {
		t.Fatalf("first status = %s, want PROMOTED", got)
	}

	// The offer lapses; the sweeper runs a week later.
	env.svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if err := env.svc.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	// The sweep's own re-promotion pass picks the requeued entry again:
	// created_at ordering puts it ahead of the younger one.
	if got := env.entryStatus(t, first.ID); got != StatusPromoted {
		t.Errorf("first status after sweep = %s, want PROMOTED (re-promoted first)", got)
	}
	if got := env.entryStatus(t, second.ID); got != StatusPending {
		t.Errorf("second status after sweep = %s, want PENDING", got)
	}

	entry, _ := env.repo.GetEntryByID(context.Background(), first.ID)
	if entry.ExpiredAt == nil {
		t.Error("expected expired_at to record the lapse")
	}
	if entry.CreatedAt != t0 {
		t.Errorf("created_at changed to %s, must stay %s", entry.CreatedAt, t0)
	}

	if notices := env.notifier.sentOfKind(NotificationKindExpiryNotice); len(notices) != 1 {
		t.Errorf("expiry notices = %d, want 1", len(notices))
	} else if notices[0].recipient != "vorstand@example.org" {
		t.Errorf("expiry notice recipient = %s", notices[0].recipient)
	}
}

func TestSweepWithNothingLapsedIsANoop(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	env.addEntry(t, "anton", 1, t0)

	if err := env.svc.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(env.notifier.sent) != 0 {
		t.Errorf("notifications sent = %d, want 0", len(env.notifier.sent))
	}
}

func TestNotificationFailureDoesNotBlockPromotionWalk(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 7)
	a := env.addEntry(t, "anton", 1, t0)
	b := env.addEntry(t, "berta", 1, t0.Add(time.Minute))
	env.notifier.err = errors.New("smtp: connection refused")

	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// Both entries are promoted despite delivery failing; the deadline and
	// sweeper are the recovery mechanism.
	if got := env.entryStatus(t, a.ID); got != StatusPromoted {
		t.Errorf("A status = %s, want PROMOTED", got)
	}
	if got := env.entryStatus(t, b.ID); got != StatusPromoted {
		t.Errorf("B status = %s, want PROMOTED", got)
	}

	failed := 0
	for _, record := range env.repo.notifications {
		if record.Status == NotificationStatusFailed {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("failed notification records = %d, want 2", failed)
	}
}

func TestMoveDirectlyBypassesCapacity(t *testing.T) {
	env := newTestEnv(t, intPtr(5), 5)
	entry := env.addEntry(t, "dora", 3, t0)

	if err := env.svc.MoveDirectly(context.Background(), entry.ID); err != nil {
		t.Fatalf("move directly: %v", err)
	}

	if got := env.entryStatus(t, entry.ID); got != StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got)
	}
	if len(env.regSvc.created) != 1 {
		t.Fatalf("registrations created = %d, want 1", len(env.regSvc.created))
	}
	// Over capacity on purpose: 5 + 3.
	if env.eventSvc.event.ParticipantCount != 8 {
		t.Errorf("participant count = %d, want 8", env.eventSvc.event.ParticipantCount)
	}

	// A confirmed entry cannot be moved again.
	if err := env.svc.MoveDirectly(context.Background(), entry.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second move: err = %v, want ErrInvalidState", err)
	}
}

func TestJoinWaitlistRequiresFullEvent(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 2)

	req := JoinWaitlistRequest{
		EventID:   env.eventID.String(),
		FirstName: "Anna",
		LastName:  "Muster",
		Email:     "anna@example.org",
		Children: []ChildRequest{
			{FirstName: "Lena", LastName: "Muster", DateOfBirth: time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	if _, err := env.svc.JoinWaitlist(context.Background(), req); !errors.Is(err, ErrEventHasCapacity) {
		t.Errorf("joining with free capacity: err = %v, want ErrEventHasCapacity", err)
	}

	env.eventSvc.setBase(10)
	entry, err := env.svc.JoinWaitlist(context.Background(), req)
	if err != nil {
		t.Fatalf("join waitlist: %v", err)
	}
	if entry.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", entry.Status)
	}
	if entry.QueuePosition != 1 {
		t.Errorf("queue position = %d, want 1", entry.QueuePosition)
	}
	if entry.ChildrenCount != 1 {
		t.Errorf("children count = %d, want 1", entry.ChildrenCount)
	}
}

func TestCancelPromotedEntryTriggersRepromotion(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 9)
	first := env.addEntry(t, "anton", 1, t0)
	second := env.addEntry(t, "berta", 1, t0.Add(time.Minute))

	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got := env.entryStatus(t, first.ID); got != StatusPromoted {
		t.Fatalf("first status = %s, want PROMOTED", got)
	}

	if err := env.svc.CancelEntry(context.Background(), first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The freed offer re-runs promotion; the next family gets the spot.
	if got := env.entryStatus(t, second.ID); got != StatusPromoted {
		t.Errorf("second status = %s, want PROMOTED after cancel", got)
	}
}

func TestQueuePositionsStayContiguous(t *testing.T) {
	env := newTestEnv(t, intPtr(5), 5)
	a := env.addEntry(t, "anton", 1, t0)
	b := env.addEntry(t, "berta", 1, t0.Add(time.Minute))
	c := env.addEntry(t, "clara", 1, t0.Add(2*time.Minute))

	if err := env.svc.CancelEntry(context.Background(), b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	entryA, _ := env.repo.GetEntryByID(context.Background(), a.ID)
	entryC, _ := env.repo.GetEntryByID(context.Background(), c.ID)
	if entryA.QueuePosition != 1 || entryC.QueuePosition != 2 {
		t.Errorf("positions after cancel = %d, %d; want 1, 2", entryA.QueuePosition, entryC.QueuePosition)
	}
}

func TestConcurrentConfirmAndPromoteSerialize(t *testing.T) {
	env := newTestEnv(t, intPtr(10), 8)
	entry := env.addEntry(t, "berta", 2, t0)
	if err := env.svc.PromoteEvent(context.Background(), env.eventID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	token := ConfirmationToken(env.settings.Secret, entry.ID, entry.CreatedAt)

	var wg sync.WaitGroup
	successes := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := env.svc.Confirm(context.Background(), entry.ID, token)
			successes <- result.Success
		}()
	}
	wg.Wait()
	close(successes)

	succeeded := 0
	for ok := range successes {
		if ok {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Errorf("concurrent confirms succeeded = %d, want exactly 1", succeeded)
	}
	if len(env.regSvc.created) != 1 {
		t.Errorf("registrations created = %d, want 1", len(env.regSvc.created))
	}
}
