// Package events is the explicit observer channel between the API client,
// the refresh coordinator and whatever front end is attached to them.
package events

import "sync"

// Topic names match the signals the web frontend broadcast on window.
const (
	TopicServerError = "server:error"
	TopicAuthLogout  = "auth:logout"
)

const (
	// KindDatabaseError is the Kind of a server:error event caused by a 503.
	KindDatabaseError = "database_error"

	// ReasonTokenExpired is the Reason of an auth:logout event published
	// after a failed refresh.
	ReasonTokenExpired = "token_expired"
)

// Event is a broadcast notification. Message and Kind are set for
// server:error, Reason for auth:logout.
type Event struct {
	Topic   string
	Message string
	Kind    string
	Reason  string
}

type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is a synchronous publish/subscribe hub. Handlers run on the
// publisher's goroutine, in subscription order, without the bus lock held,
// so a handler may subscribe, unsubscribe or publish.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscription
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for topic. The returned func removes it and is
// safe to call more than once.
func (b *Bus) Subscribe(topic string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[string][]subscription)
	}
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[topic]
	for i, s := range list {
		if s.id == id {
			b.subs[topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Publish delivers e to every handler subscribed to e.Topic at the time of
// the call. A nil Bus drops the event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	list := append([]subscription(nil), b.subs[e.Topic]...)
	b.mu.Unlock()

	for _, s := range list {
		s.fn(e)
	}
}
