package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/asset-desk/internal/config"
	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/mq"
	"github.com/spec-kit/asset-desk/internal/service"
)

// NotificationWorker owns the event sinks fed by the dispatcher.
type NotificationWorker struct {
	service *service.NotificationService
	rabbit  *mq.RabbitPublisher
	logger  *zap.Logger
}

// StartNotificationWorker builds the configured sinks and subscribes them to
// every domain event. The Redis channel sink is always present; RabbitMQ is
// added when a URL is configured. An unreachable broker is logged and skipped.
func StartNotificationWorker(cfg *config.Config, dispatcher events.Dispatcher, redisSink mq.Publisher, logger *zap.Logger) *NotificationWorker {
	sinks := []service.EventSink{}
	if redisSink != nil {
		sinks = append(sinks, service.EventSink{Name: "redis", Prefix: cfg.Events.ChannelPrefix, Publisher: redisSink})
	}

	w := &NotificationWorker{logger: logger}
	if cfg.RabbitMQ.URL != "" {
		publisher, err := mq.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable; continuing without it", zap.Error(err))
		} else {
			w.rabbit = publisher
			sinks = append(sinks, service.EventSink{Name: "rabbitmq", Publisher: publisher})
		}
	}

	w.service = service.NewNotificationService(dispatcher, logger, sinks...)
	w.service.RegisterHandlers()
	logger.Info("notification worker started", zap.Int("sinks", len(sinks)))
	return w
}

// Stop releases broker connections.
func (w *NotificationWorker) Stop() {
	if w == nil || w.rabbit == nil {
		return
	}
	if err := w.rabbit.Close(); err != nil {
		w.logger.Warn("close rabbitmq publisher", zap.Error(err))
	}
}
