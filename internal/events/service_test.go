package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"vereinsportal/pkg/lock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	mu       sync.Mutex
	events   map[uuid.UUID]*Event
	children map[uuid.UUID]int

	countCalls int
	writeCalls int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		events:   make(map[uuid.UUID]*Event),
		children: make(map[uuid.UUID]int),
	}
}

func (f *fakeRepository) Create(ctx context.Context, event *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	copied := *event
	f.events[event.ID] = &copied
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if v, ok := updates["max_participants"]; ok {
		max := v.(int)
		event.MaxParticipants = &max
	}
	if v, ok := updates["title"]; ok {
		event.Title = v.(string)
	}
	copied := *event
	return &copied, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepository) CountRegisteredChildren(ctx context.Context, eventID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	return f.children[eventID], nil
}

func (f *fakeRepository) WriteDerivedCounts(ctx context.Context, eventID uuid.UUID, count int, isFull bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	event, ok := f.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.ParticipantCount = count
	event.IsFull = isFull
	return nil
}

type fakePromoter struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (f *fakePromoter) PromoteEvent(ctx context.Context, eventID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, eventID)
	return nil
}

func (f *fakePromoter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func intPtr(v int) *int { return &v }

func seedEvent(t *testing.T, repo *fakeRepository, max *int, registered int) uuid.UUID {
	t.Helper()
	event := &Event{
		ID:              uuid.New(),
		Title:           "Sommerlager",
		Date:            time.Now().AddDate(0, 1, 0),
		MaxParticipants: max,
		Status:          EventStatusPublished,
	}
	if err := repo.Create(context.Background(), event); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	repo.children[event.ID] = registered
	return event.ID
}

func TestRecomputeDerivesCountAndFullFlag(t *testing.T) {
	tests := []struct {
		name       string
		max        *int
		registered int
		wantFull   bool
	}{
		{"below capacity", intPtr(10), 4, false},
		{"exactly at capacity", intPtr(10), 10, true},
		{"over capacity", intPtr(10), 12, true},
		{"unlimited never full", nil, 500, false},
		{"empty event", intPtr(3), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			svc := NewService(repo, lock.NewKeyedMutex())
			eventID := seedEvent(t, repo, tt.max, tt.registered)

			if err := svc.Recompute(context.Background(), eventID); err != nil {
				t.Fatalf("recompute: %v", err)
			}

			event, err := repo.GetByID(context.Background(), eventID)
			if err != nil {
				t.Fatalf("get event: %v", err)
			}
			if event.ParticipantCount != tt.registered {
				t.Errorf("participant count = %d, want %d", event.ParticipantCount, tt.registered)
			}
			if event.IsFull != tt.wantFull {
				t.Errorf("is_full = %t, want %t", event.IsFull, tt.wantFull)
			}
		})
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, lock.NewKeyedMutex())
	eventID := seedEvent(t, repo, intPtr(10), 7)

	for i := 0; i < 3; i++ {
		if err := svc.Recompute(context.Background(), eventID); err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
	}

	event, _ := repo.GetByID(context.Background(), eventID)
	if event.ParticipantCount != 7 || event.IsFull {
		t.Errorf("after repeated recompute: count=%d full=%t, want count=7 full=false",
			event.ParticipantCount, event.IsFull)
	}
}

func TestRecomputeTriggersPromotionOnlyWithFreeSpots(t *testing.T) {
	tests := []struct {
		name        string
		max         *int
		registered  int
		wantPromote bool
	}{
		{"free spots trigger promotion", intPtr(10), 4, true},
		{"full event does not promote", intPtr(10), 10, false},
		{"unlimited event does not promote", nil, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			svc := NewService(repo, lock.NewKeyedMutex())
			promoter := &fakePromoter{}
			svc.SetPromoter(promoter)
			eventID := seedEvent(t, repo, tt.max, tt.registered)

			if err := svc.Recompute(context.Background(), eventID); err != nil {
				t.Fatalf("recompute: %v", err)
			}

			got := promoter.callCount() > 0
			if got != tt.wantPromote {
				t.Errorf("promoter invoked = %t, want %t", got, tt.wantPromote)
			}
		})
	}
}

func TestRecomputeUnknownEvent(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, lock.NewKeyedMutex())

	err := svc.Recompute(context.Background(), uuid.New())
	if err != ErrEventNotFound {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestConcurrentRecomputesSerialize(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, lock.NewKeyedMutex())
	eventID := seedEvent(t, repo, intPtr(10), 6)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Recompute(context.Background(), eventID); err != nil {
				t.Errorf("recompute: %v", err)
			}
		}()
	}
	wg.Wait()

	event, _ := repo.GetByID(context.Background(), eventID)
	if event.ParticipantCount != 6 || event.IsFull {
		t.Errorf("after concurrent recomputes: count=%d full=%t", event.ParticipantCount, event.IsFull)
	}
}

func TestDeleteEventRules(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, lock.NewKeyedMutex())

	published := seedEvent(t, repo, intPtr(10), 0)
	if err := svc.DeleteEvent(context.Background(), published); err == nil {
		t.Error("expected delete of published event to fail")
	}

	draft := &Event{ID: uuid.New(), Title: "Entwurf", Date: time.Now().AddDate(0, 1, 0), Status: EventStatusDraft}
	if err := repo.Create(context.Background(), draft); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	if err := svc.DeleteEvent(context.Background(), draft.ID); err != nil {
		t.Errorf("delete draft event: %v", err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, lock.NewKeyedMutex())

	_, err := svc.CreateEvent(context.Background(), nil, CreateEventRequest{
		Title: "Vergangenes Fest",
		Date:  time.Now().AddDate(0, 0, -1),
	})
	if err == nil {
		t.Error("expected past date to be rejected")
	}

	_, err = svc.CreateEvent(context.Background(), nil, CreateEventRequest{
		Title:  "Falsche Altersgrenzen",
		Date:   time.Now().AddDate(0, 1, 0),
		MinAge: intPtr(12),
		MaxAge: intPtr(6),
	})
	if err == nil {
		t.Error("expected min_age > max_age to be rejected")
	}

	resp, err := svc.CreateEvent(context.Background(), nil, CreateEventRequest{
		Title: "Herbstwanderung",
		Date:  time.Now().AddDate(0, 2, 0),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if resp.Status != EventStatusDraft {
		t.Errorf("default status = %s, want DRAFT", resp.Status)
	}
}
