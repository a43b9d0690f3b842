package events

import (
	"sync"

	"glampbook/internal/domain"
)

// Feed is the in-process booking change feed. The lifecycle manager publishes
// on it and every active sync engine subscribes with a viewer-scoped filter,
// so the filter runs before delivery and subscribers never see other viewers'
// bookings.
type Feed struct {
	mu          sync.RWMutex
	subscribers map[int64]*subscription
	nextID      int64
}

type subscription struct {
	filter  func(domain.Change) bool
	handler func(domain.Change)
}

// NewFeed constructs an empty feed.
func NewFeed() *Feed {
	return &Feed{subscribers: make(map[int64]*subscription)}
}

// Subscribe registers a handler for changes matching filter. A nil filter
// matches everything. The returned function removes the subscription; calling
// it more than once is harmless.
func (f *Feed) Subscribe(filter func(domain.Change) bool, handler func(domain.Change)) (func(), error) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subscribers[id] = &subscription{filter: filter, handler: handler}
	f.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, id)
			f.mu.Unlock()
		})
	}
	return unsubscribe, nil
}

// Publish delivers the change to every matching subscriber. Handlers run
// synchronously on the caller's goroutine; subscribers that need concurrency
// hand off to their own channel.
func (f *Feed) Publish(change domain.Change) {
	f.mu.RLock()
	subs := make([]*subscription, 0, len(f.subscribers))
	for _, s := range f.subscribers {
		subs = append(subs, s)
	}
	f.mu.RUnlock()

	for _, s := range subs {
		if s.filter == nil || s.filter(change) {
			s.handler(change)
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}
