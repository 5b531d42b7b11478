package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/schul-cloud/schulcloud-editor/models"
)

// Channel is the pub/sub channel resource events are published on.
const Channel = "editor:events"

type Type string

const (
	Created Type = "created"
	Patched Type = "patched"
	Removed Type = "removed"
)

// Event describes one committed change on a resource. Payload carries the
// sanitized representation that was returned to the caller, never the raw
// document.
type Event struct {
	ID         string              `json:"id"`
	Type       Type                `json:"type"`
	Resource   models.ResourceType `json:"resource"`
	ResourceID string              `json:"resourceId"`
	Payload    interface{}         `json:"payload,omitempty"`
	At         time.Time           `json:"at"`
}

// Emitter is what the content services publish through.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Publisher fans events out over redis pub/sub. Publishing is best effort: a
// failed publish is logged and never fails the operation that caused it.
type Publisher struct {
	client RedisClient
	logger *logrus.Logger
}

func NewPublisher(client RedisClient, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	event.ID = uuid.NewString()
	event.At = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("failed to marshal event")
		return
	}
	if err := p.client.Publish(ctx, Channel, payload); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"type":     event.Type,
			"resource": event.Resource,
		}).Error("failed to publish event")
	}
}

func (p *Publisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, Channel)
}

// NopEmitter drops every event. Used when no redis host is configured.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}
