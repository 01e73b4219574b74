package application

import (
	"context"

	"github.com/stayhaven/service-booking/internal/kafka"
	"github.com/stayhaven/service-booking/internal/repository"
)

// Transactor runs a unit of work inside one atomic transaction, handing the
// callback repositories bound to that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error
}

// EventPublisher publishes domain events after committed state changes.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}
