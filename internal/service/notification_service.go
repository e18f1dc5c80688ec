package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/mq"
)

// EventSink is a named destination for domain events. Events are published
// under Prefix.<type>, or just <type> when Prefix is empty.
type EventSink struct {
	Name      string
	Prefix    string
	Publisher mq.Publisher
}

func (s EventSink) key(eventType events.EventType) string {
	if s.Prefix == "" {
		return string(eventType)
	}
	return s.Prefix + "." + string(eventType)
}

// NotificationService logs domain events and forwards them to every sink.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sinks      []EventSink
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, sinks ...EventSink) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		sinks:      sinks,
	}
}

// RegisterHandlers subscribes to every event type.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

// handle never fails the originating request: sink errors are logged and
// returned only to the dispatcher.
func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.Actor.ID),
		zap.Any("payload", event.Payload))

	var errs []error
	for _, sink := range n.sinks {
		if sink.Publisher == nil {
			continue
		}
		key := sink.key(event.Type)
		if err := sink.Publisher.Publish(ctx, key, event); err != nil {
			n.logger.Warn("publish event",
				zap.String("sink", sink.Name),
				zap.String("key", key),
				zap.String("event_id", event.ID),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
