package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// EventLocker serializes mutations against a single event. Recompute, promote
// and confirm are all read-modify-write sequences over the same capacity
// fields, so every caller must hold the event's lock for the full sequence.
type EventLocker interface {
	// Lock blocks until the event's lock is held or ctx is done. The returned
	// function releases the lock.
	Lock(ctx context.Context, eventID uuid.UUID) (func(), error)
}

// KeyedMutex is an in-process EventLocker backed by one mutex per event ID.
// Entries are reference-counted and dropped once the last holder releases,
// so the map only holds events with contention in flight.
type KeyedMutex struct {
	mu      sync.Mutex
	mutexes map[uuid.UUID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates a new in-process keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		mutexes: make(map[uuid.UUID]*entry),
	}
}

// Lock acquires the mutex for eventID. Acquisition itself is not interruptible
// by ctx (contended sections are short-lived); ctx is checked before blocking.
func (k *KeyedMutex) Lock(ctx context.Context, eventID uuid.UUID) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k.mu.Lock()
	e, ok := k.mutexes[eventID]
	if !ok {
		e = &entry{}
		k.mutexes[eventID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.mutexes, eventID)
		}
		k.mu.Unlock()
	}, nil
}
