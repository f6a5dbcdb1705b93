// Package notifier delivers change messages to a chat through the Telegram
// Bot API and builds the message payloads for each kind of change.
package notifier

import "context"

// Notifier sends one rendered message
type Notifier interface {
	// Notify delivers message; an error means it was not delivered
	Notify(ctx context.Context, message string) error
}
