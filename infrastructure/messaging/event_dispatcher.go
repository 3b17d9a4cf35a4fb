package messaging

import (
	"context"
	"sync"

	"simkernel/domain/events"

	"go.uber.org/zap"
)

// EventHandler reacts to a single domain event
type EventHandler func(ctx context.Context, event events.DomainEvent)

// EventDispatcher is the in-process event publisher. Subscribers are
// invoked synchronously after the owning operation succeeds; handler
// panics are not recovered here, subscribers are trusted in-process
// code.
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	logger   *zap.Logger
}

// NewEventDispatcher creates an event dispatcher
func NewEventDispatcher(logger *zap.Logger) *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (d *EventDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Publish delivers events to their subscribers
func (d *EventDispatcher) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		d.mu.RLock()
		handlers := d.handlers[event.GetEventType()]
		d.mu.RUnlock()

		d.logger.Debug("dispatching event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Int("subscribers", len(handlers)),
		)

		for _, handler := range handlers {
			handler(ctx, event)
		}
	}
	return nil
}
