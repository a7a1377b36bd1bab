// Package events publishes rental and car lifecycle events after the store has
// committed them.
package events

import (
	"context"

	"driveeasy-rental-backend/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }
func (noopPublisher) Close() error                               { return nil }
