// Package events carries raw provider chunks from transports to the loop
// that owns the turn controller.
package events

import (
	"sync"
	"time"

	"github.com/killallgit/ada/pkg/logger"
)

var log = logger.WithComponent("bus")

// Kind distinguishes the events a transport can produce.
type Kind int

const (
	// KindChunk carries one undecoded fragment of a response body.
	KindChunk Kind = iota
	// KindSettled is published once when a dispatch returns. Err is nil
	// when the body ended cleanly.
	KindSettled
)

func (k Kind) String() string {
	switch k {
	case KindChunk:
		return "chunk"
	case KindSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Event represents one message on a provider topic
type Event struct {
	Topic     string
	TurnID    string
	Kind      Kind
	Raw       string
	Err       error
	Timestamp time.Time
}

// Bus fans events out to subscriptions by topic. Delivery per subscription
// is ordered and lossless: Publish never blocks and never drops.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]*Subscription
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*Subscription)}
}

// Subscribe registers interest in topic. The returned subscription must be
// released with Unsubscribe.
func (b *Bus) Subscribe(topic string) *Subscription {
	s := newSubscription(topic)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.close()
		return s
	}
	b.subs[topic] = append(b.subs[topic], s)
	log.Debug("subscribed", "topic", topic)
	return s
}

func (b *Bus) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}

	b.mu.Lock()
	subs := b.subs[s.topic]
	for i, candidate := range subs {
		if candidate == s {
			b.subs[s.topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[s.topic]) == 0 {
		delete(b.subs, s.topic)
	}
	b.mu.Unlock()

	s.close()
	log.Debug("unsubscribed", "topic", s.topic)
}

// Publish queues ev for every subscription on ev.Topic. Events for a topic
// nobody listens to are discarded.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.RLock()
	subs := b.subs[ev.Topic]
	b.mu.RUnlock()

	if len(subs) == 0 {
		log.Debug("event without subscriber discarded", "topic", ev.Topic, "kind", ev.Kind)
		return
	}
	for _, s := range subs {
		s.push(ev)
	}
}

// Close releases every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	all := b.subs
	b.subs = make(map[string][]*Subscription)
	b.closed = true
	b.mu.Unlock()

	for _, subs := range all {
		for _, s := range subs {
			s.close()
		}
	}
}

// Subscription is one consumer of a topic. Events are buffered without bound
// and forwarded to C in order.
type Subscription struct {
	topic string
	out   chan Event

	mu      sync.Mutex
	queue   []Event
	wake    chan struct{}
	done    chan struct{}
	closing sync.Once
}

func newSubscription(topic string) *Subscription {
	s := &Subscription{
		topic: topic,
		out:   make(chan Event),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go s.forward()
	return s
}

// C delivers the subscription's events. It is closed after Unsubscribe.
func (s *Subscription) C() <-chan Event {
	return s.out
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) push(ev Event) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) close() {
	s.closing.Do(func() { close(s.done) })
}

func (s *Subscription) forward() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		ev := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}
