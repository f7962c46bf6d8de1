// Package event carries notifications between the suggestion engine and
// anything observing it: status lines, loggers, tests.
//
// Delivery is synchronous and in subscription order. The engine runs on
// the editor's interaction thread, so handlers execute inline during the
// operation that published the event; long-running work belongs elsewhere.
package event

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Topic names an event stream.
type Topic string

// Topics published by the suggestion engine.
const (
	TopicRendered  Topic = "suggestion.rendered"
	TopicCleared   Topic = "suggestion.cleared"
	TopicCommitted Topic = "suggestion.committed"
	TopicReloaded  Topic = "config.reloaded"
)

// Matches reports whether the topic matches a subscription pattern. A
// pattern is an exact topic, a trailing-star prefix such as
// "suggestion.*", or "*" for everything.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == "*" || pattern == t {
		return true
	}
	if prefix, ok := strings.CutSuffix(string(pattern), "*"); ok {
		return strings.HasPrefix(string(t), prefix)
	}
	return false
}

// Event is one published notification.
type Event struct {
	Topic   Topic
	Payload any
	Time    time.Time
}

// HandlerFunc receives published events.
type HandlerFunc func(Event)

var (
	// ErrNilHandler is returned when subscribing without a handler.
	ErrNilHandler = errors.New("nil event handler")

	// ErrInvalidTopic is returned when subscribing to an empty pattern.
	ErrInvalidTopic = errors.New("invalid topic pattern")

	// ErrSubscriptionNotFound is returned when unsubscribing a
	// subscription the bus does not hold.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Subscription identifies one registered handler.
type Subscription struct {
	id uint64
}

type registration struct {
	id      uint64
	pattern Topic
	fn      HandlerFunc
}

// Stats is a snapshot of bus counters.
type Stats struct {
	Published         uint64
	Delivered         uint64
	HandlerPanics     uint64
	ActiveSubscribers int
}

// Bus is a synchronous publish/subscribe hub.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []*registration

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeFunc registers fn for every event whose topic matches pattern.
func (b *Bus) SubscribeFunc(pattern Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}
	if pattern == "" {
		return Subscription{}, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, &registration{id: b.nextID, pattern: pattern, fn: fn})
	return Subscription{id: b.nextID}, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, reg := range b.subs {
		if reg.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Publish delivers an event to every matching subscriber, in subscription
// order. A panicking handler is counted and does not stop delivery to the
// handlers after it.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	matched := make([]*registration, 0, len(b.subs))
	for _, reg := range b.subs {
		if topic.Matches(reg.pattern) {
			matched = append(matched, reg)
		}
	}
	b.mu.RUnlock()

	if len(matched) == 0 {
		return
	}

	b.published.Add(1)
	ev := Event{Topic: topic, Payload: payload, Time: time.Now()}
	for _, reg := range matched {
		b.deliver(ev, reg.fn)
	}
}

func (b *Bus) deliver(ev Event, fn HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
		}
	}()
	fn(ev)
	b.delivered.Add(1)
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := len(b.subs)
	b.mu.RUnlock()

	return Stats{
		Published:         b.published.Load(),
		Delivered:         b.delivered.Load(),
		HandlerPanics:     b.panics.Load(),
		ActiveSubscribers: active,
	}
}
