// Package notify hands reset tokens to an out-of-band delivery worker. The
// API never sends mail or SMS itself; it only enqueues.
package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const passwordResetStream = "auth:password-reset"

type Notifier interface {
	PasswordReset(ctx context.Context, recipient string, resetToken string) error
}

// StreamNotifier enqueues deliveries onto a redis stream consumed by the
// delivery worker.
type StreamNotifier struct {
	client *redis.Client
}

func NewStreamNotifier(client *redis.Client) *StreamNotifier {
	return &StreamNotifier{client: client}
}

func (n *StreamNotifier) PasswordReset(ctx context.Context, recipient string, resetToken string) error {
	_, err := n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: passwordResetStream,
		Values: map[string]any{
			"type":        "password_reset",
			"recipient":   recipient,
			"reset_token": resetToken,
		},
	}).Result()
	return err
}

// NopNotifier drops deliveries. Used in tests and when redis is not
// configured in development.
type NopNotifier struct{}

func (NopNotifier) PasswordReset(ctx context.Context, recipient string, resetToken string) error {
	return nil
}
