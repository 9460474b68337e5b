package emitter

import (
	"context"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/messaging"
)

// Emitter stamps gateway events with an envelope and publishes them
// best-effort. Publish failures are logged and surfaced to sentry but never
// returned: the request path must not fail because the broker is down.
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Emit marshals payload and publishes it under the given category/type
	Emit(ctx context.Context, category domain.EventCategory, eventType domain.EventType, tenantID string, payload interface{})
	// Close closes the underlying publisher connection
	Close()
}

type emitter struct {
	publisher messaging.Publisher
	json      adapter.JSON
	clock     adapter.Clock
}

// NewEmitter creates a new gateway event emitter
func NewEmitter(pub messaging.Publisher, jsonAdapter adapter.JSON, clock adapter.Clock) Emitter {
	return &emitter{
		publisher: pub,
		json:      jsonAdapter,
		clock:     clock,
	}
}

// Emit publishes the event best-effort
func (e *emitter) Emit(ctx context.Context, category domain.EventCategory, eventType domain.EventType, tenantID string, payload interface{}) {
	now := e.clock.Now()

	event := &domain.GatewayEvent{
		ID:        ulid.MustNewDefault(now).String(),
		Category:  category,
		EventType: eventType,
		TenantID:  tenantID,
		Timestamp: now,
	}

	if payload != nil {
		data, err := e.json.Marshal(payload)
		if err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("category", string(category)),
				zap.String("event_type", string(eventType)))
			return
		}
		event.Payload = data
	}

	if err := e.publisher.PublishEvent(ctx, event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("category", string(category)),
			zap.String("event_type", string(eventType)),
			zap.String("event_id", event.ID))
	}
}

// Close closes the underlying publisher connection
func (e *emitter) Close() {
	e.publisher.Close()
}
