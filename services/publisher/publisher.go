// Package publisher mirrors change events onto a message stream for other
// consumers.
package publisher

import (
	"context"

	"sjsage522/pagewatch/internal/page"
)

// EventField is the stream entry field carrying the encoded event
const EventField = "event"

// Publisher represents a service for publishing change events
type Publisher interface {
	// Publish appends one event to the stream
	Publish(ctx context.Context, event page.ChangeEvent) error

	// Close closes the publisher connection
	Close() error
}
