package kafka

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type Writer interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Publisher routes parking events to their topics. Publishing is best effort:
// failures are logged and never fail the calling operation.
type Publisher struct {
	writer             Writer
	parkingTopic       string
	notificationsTopic string
	attempts           int
	backoff            time.Duration
	now                func() time.Time
}

type PublisherOption func(*Publisher)

// WithNotificationsTopic also sends session exits and long-stay alerts to the
// topic the worker consumes.
func WithNotificationsTopic(topic string) PublisherOption {
	return func(p *Publisher) {
		p.notificationsTopic = topic
	}
}

// WithRetry sets how many times each publish is attempted and the base delay
// between attempts; the n-th retry waits n*backoff.
func WithRetry(attempts int, backoff time.Duration) PublisherOption {
	return func(p *Publisher) {
		if attempts < 1 {
			attempts = 1
		}
		p.attempts = attempts
		p.backoff = backoff
	}
}

func NewPublisher(writer Writer, parkingTopic string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		writer:       writer,
		parkingTopic: parkingTopic,
		attempts:     3,
		backoff:      200 * time.Millisecond,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event ParkingEvent) {
	if p == nil || p.writer == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}
	if p.parkingTopic != "" {
		if err := PublishWithRetry(ctx, p.writer, p.parkingTopic, event.Key(), event, p.attempts, p.backoff); err != nil {
			log.Printf("WARNING: failed to publish %s: %v", event.Type, err)
		}
	}
	if p.notificationsTopic != "" && notifiable(event.Type) {
		if err := PublishWithRetry(ctx, p.writer, p.notificationsTopic, event.Key(), event, p.attempts, p.backoff); err != nil {
			log.Printf("WARNING: failed to publish %s notification: %v", event.Type, err)
		}
	}
}

func notifiable(eventType string) bool {
	return eventType == EventSessionExited || eventType == EventLongStayAlert
}

// PublishWithRetry calls w.Publish up to maxRetries times, waiting
// i*backoff after the i-th failure. It gives up early when ctx ends.
func PublishWithRetry(ctx context.Context, w Writer, topic, key string, payload interface{}, maxRetries int, backoff time.Duration) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := w.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("publish attempt %d to %s failed: %v", i+1, topic, err)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * backoff):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
