package notify

import "context"

// Notifier publishes the digest to a chat channel. Post returns the id of the
// new message; Edit replaces the body of an existing one in place.
type Notifier interface {
	Post(ctx context.Context, body string) (string, error)
	Edit(ctx context.Context, messageID, body string) error
}
