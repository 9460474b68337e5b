package messaging

import (
	"context"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// Publisher defines the interface for publishing gateway events to the
// message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a gateway event to the message broker
	PublishEvent(ctx context.Context, event *domain.GatewayEvent) error
	// Close closes the connection
	Close()
}
