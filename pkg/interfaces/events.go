package interfaces

import "context"

// Event is a notification published on a named topic.
type Event struct {
	Topic   string
	Payload map[string]any
}

// EventHandler consumes a published event. Handlers must be idempotent:
// topics such as fragment reloads can fire repeatedly for one logical change.
type EventHandler func(ctx context.Context, evt Event)

// EventBus decouples producers (fragment loader, language setter) from
// consumers (link rewriter, translator) through named topics.
type EventBus interface {
	Subscribe(topic string, handler EventHandler) (unsubscribe func())
	Publish(ctx context.Context, evt Event)
}
