package services

import (
	"context"

	"todo/internal/logger"
)

// Routing keys of the domain events published by the services.
const (
	EventUserRegistered = "user.registered"
	EventTaskCreated    = "task.created"
	EventTaskUpdated    = "task.updated"
	EventTaskDeleted    = "task.deleted"
)

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	PublishEvent(routingKey string, data any) error
}

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, events EventPublisher, routingKey string, data any) {
	if events == nil {
		return
	}
	if err := events.PublishEvent(routingKey, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "event", routingKey, "error", err)
	}
}
