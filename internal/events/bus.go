package events

import (
	"context"
	"sort"
	"sync"

	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Topic names published by the runtime.
const (
	TopicLanguageChanged = "language.changed"
	TopicFragmentsLoaded = "fragments.loaded"
	TopicSchemeChanged   = "scheme.changed"
)

// Payload keys used by the built-in topics.
const (
	PayloadLanguage = "language"
	PayloadScheme   = "scheme"
)

// Bus is a synchronous named-topic publish/subscribe channel. Handlers run in
// subscription order on the publishing goroutine; a handler panic is recovered
// and logged so one consumer cannot break another's resynchronization pass.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	topics map[string][]subscription
	logger interfaces.Logger
}

type subscription struct {
	id      int
	handler interfaces.EventHandler
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger attaches a logger used to report recovered handler panics.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus constructs an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		topics: make(map[string][]subscription),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var _ interfaces.EventBus = (*Bus)(nil)

// Subscribe registers a handler for a topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, handler interfaces.EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.topics[topic]
		for i, sub := range subs {
			if sub.id == id {
				b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the event to every subscriber of its topic, in
// subscription order.
func (b *Bus) Publish(ctx context.Context, evt interfaces.Event) {
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.topics[evt.Topic]))
	copy(subs, b.topics[evt.Topic])
	b.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	for _, sub := range subs {
		b.dispatch(ctx, sub, evt)
	}
}

func (b *Bus) dispatch(ctx context.Context, sub subscription, evt interfaces.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("events.handler.panic", "topic", evt.Topic, "panic", rec)
		}
	}()
	sub.handler(ctx, evt)
}
