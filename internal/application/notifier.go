package application

import "context"

// Notifier reports dispatch results and failures to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// NoopNotifier discards every message.
type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}
