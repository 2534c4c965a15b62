package shared

import "context"

// EventHandler consumes lifecycle events
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the types the handler wants; empty means all
	EventTypes() []string
}

// EventPublisher publishes events after the transaction that produced them
// has committed. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is an in-process publisher with subscriptions
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PartitionedEvent is delivered in order with every other event sharing its
// key. Reservation events key on the order ID.
type PartitionedEvent interface {
	DomainEvent
	PartitionKey() string
}

// PartitionKey returns the ordering key of event, falling back to its aggregate ID
func PartitionKey(event DomainEvent) string {
	if p, ok := event.(PartitionedEvent); ok && p.PartitionKey() != "" {
		return p.PartitionKey()
	}
	return event.AggregateID().String()
}
