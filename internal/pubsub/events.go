package pubsub

import "time"

// EventType names what happened to a target.
type EventType string

// ReportReady signals that a report finished and the target should be
// re-synchronized.
const ReportReady EventType = "report_ready"

// TargetRef identifies the target an event is about.
type TargetRef struct {
	Instance string
	TargetID string
	At       time.Time
}

// Event wraps a payload emitted by the broker.
type Event[T any] struct {
	Type    EventType
	Payload T
}

// Publisher exposes the Publish API implemented by Broker.
type Publisher[T any] interface {
	Publish(EventType, T)
}

// PublisherFunc delivers events by calling f directly, on the publisher's
// goroutine. Unlike Broker it never drops an event.
type PublisherFunc[T any] func(EventType, T)

func (f PublisherFunc[T]) Publish(t EventType, payload T) {
	f(t, payload)
}
