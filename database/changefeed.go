package database

import "sync"

// Collection names used across repositories and the change feed.
const (
	CollAppointments           = "appointments"
	CollNotifications          = "notifications"
	CollScheduledNotifications = "scheduledNotifications"
	CollDeviceTokens           = "deviceTokens"
	CollUsers                  = "users"
)

// ChangeEvent describes one document write observed on a collection.
// Before is nil for creations.
type ChangeEvent struct {
	Collection string
	Before     any
	After      any
}

// CreateHandler reacts to a document creation.
type CreateHandler func(doc any)

// UpdateHandler reacts to a document update with before/after snapshots.
type UpdateHandler func(before, after any)

// ChangeFeed is the trigger-host abstraction over the document store:
// services emit events after successful writes, and trigger logic registers
// handlers against collections. Handlers run synchronously on the emitting
// goroutine, so they are directly invokable with synthetic records in tests.
type ChangeFeed interface {
	OnCreate(collection string, h CreateHandler)
	OnUpdate(collection string, h UpdateHandler)
	Subscribe(collection string, h func(ChangeEvent)) *Subscription
	EmitCreate(collection string, doc any)
	EmitUpdate(collection string, before, after any)
	EmitDelete(collection string, doc any)
}

// Subscription is a cancellable handle to a live change-feed subscription.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// MemoryChangeFeed is the in-process ChangeFeed implementation.
type MemoryChangeFeed struct {
	mu        sync.RWMutex
	onCreate  map[string][]CreateHandler
	onUpdate  map[string][]UpdateHandler
	subs      map[string]map[int]func(ChangeEvent)
	nextSubID int
}

func NewMemoryChangeFeed() *MemoryChangeFeed {
	return &MemoryChangeFeed{
		onCreate: make(map[string][]CreateHandler),
		onUpdate: make(map[string][]UpdateHandler),
		subs:     make(map[string]map[int]func(ChangeEvent)),
	}
}

func (f *MemoryChangeFeed) OnCreate(collection string, h CreateHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCreate[collection] = append(f.onCreate[collection], h)
}

func (f *MemoryChangeFeed) OnUpdate(collection string, h UpdateHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUpdate[collection] = append(f.onUpdate[collection], h)
}

// Subscribe registers a live-query style observer for every event on the
// collection and returns a cancellable handle.
func (f *MemoryChangeFeed) Subscribe(collection string, h func(ChangeEvent)) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs[collection] == nil {
		f.subs[collection] = make(map[int]func(ChangeEvent))
	}
	id := f.nextSubID
	f.nextSubID++
	f.subs[collection][id] = h

	return &Subscription{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[collection], id)
	}}
}

func (f *MemoryChangeFeed) EmitCreate(collection string, doc any) {
	f.mu.RLock()
	creates := append([]CreateHandler(nil), f.onCreate[collection]...)
	subs := f.snapshotSubs(collection)
	f.mu.RUnlock()

	for _, h := range creates {
		h(doc)
	}
	ev := ChangeEvent{Collection: collection, After: doc}
	for _, h := range subs {
		h(ev)
	}
}

func (f *MemoryChangeFeed) EmitUpdate(collection string, before, after any) {
	f.mu.RLock()
	updates := append([]UpdateHandler(nil), f.onUpdate[collection]...)
	subs := f.snapshotSubs(collection)
	f.mu.RUnlock()

	for _, h := range updates {
		h(before, after)
	}
	ev := ChangeEvent{Collection: collection, Before: before, After: after}
	for _, h := range subs {
		h(ev)
	}
}

// EmitDelete notifies live-query subscribers that a document was removed.
// There is no trigger registration for deletes; only subscriptions see them.
func (f *MemoryChangeFeed) EmitDelete(collection string, doc any) {
	f.mu.RLock()
	subs := f.snapshotSubs(collection)
	f.mu.RUnlock()

	ev := ChangeEvent{Collection: collection, Before: doc}
	for _, h := range subs {
		h(ev)
	}
}

// snapshotSubs must be called with f.mu held.
func (f *MemoryChangeFeed) snapshotSubs(collection string) []func(ChangeEvent) {
	out := make([]func(ChangeEvent), 0, len(f.subs[collection]))
	for _, h := range f.subs[collection] {
		out = append(out, h)
	}
	return out
}
