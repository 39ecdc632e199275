package service

import (
	"context"

	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/pkg/events"
	"ai-coverletter-be/pkg/nats"
)

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event)
}

// publisherService pushes domain events onto the NATS bus. Event delivery is
// best effort: a bus outage must never fail the phase that already ran, so
// failures are logged and swallowed.
type publisherService struct {
	publisher *nats.Publisher
	logger    logger.ILogger
}

func NewPublisherService(publisher *nats.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		publisher: publisher,
		logger:    log,
	}
}

func (s *publisherService) Publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("PublisherService", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}
