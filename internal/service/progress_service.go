package service

import (
	"context"
	"strings"

	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/internal/websocket"
	"ai-coverletter-be/pkg/events"
	"ai-coverletter-be/pkg/nats"
)

type IProgressService interface {
	Start() error
}

// progressService bridges phase events from the NATS bus into the websocket
// hub, so browsers watching a session see phases start, finish and fail live.
type progressService struct {
	subscriber *nats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewProgressService(subscriber *nats.Subscriber, hub *websocket.Hub, log logger.ILogger) IProgressService {
	return &progressService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *progressService) Start() error {
	if s.subscriber == nil {
		s.logger.Warn("ProgressService", "No NATS subscriber configured, progress stream disabled", nil)
		return nil
	}
	// NATS wildcards match whole tokens only, so take the full event stream
	// and filter for phase events in the handler.
	return s.subscriber.Subscribe("events.>", "progress-hub", s.handle)
}

func (s *progressService) handle(ctx context.Context, event events.Event) error {
	if !strings.HasPrefix(event.EventType(), "PHASE_") {
		return nil
	}

	sessionId, _ := event.Payload()["session_id"].(string)
	if sessionId == "" {
		s.logger.Warn("ProgressService", "Phase event without session_id", map[string]interface{}{
			"event_type": event.EventType(),
		})
		return nil
	}

	s.hub.Send(sessionId, map[string]interface{}{
		"event":       event.EventType(),
		"payload":     event.Payload(),
		"occurred_at": event.Timestamp(),
	})
	return nil
}
