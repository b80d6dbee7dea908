// Package events carries content changes from the content API to the web API over RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Routing keys.
const (
	StoryCreated       = "story.created"
	StoryUpdated       = "story.updated"
	StoryStatusChanged = "story.status_changed"
	StoryDeleted       = "story.deleted"
	PageDeleted        = "page.deleted"
)

const exchangeType = "topic"

// Event describes one change to a story graph.
type Event struct {
	Type       string    `json:"type"`
	StoryID    int64     `json:"story_id"`
	PageID     int64     `json:"page_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event of the given type.
func New(eventType string, storyID int64) Event {
	return Event{Type: eventType, StoryID: storyID, OccurredAt: time.Now().UTC()}
}

// Publisher publishes content events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops events. Used when RABBITMQ_URL is not configured.
type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug("Event dropped, no broker configured",
		zap.String("type", event.Type),
		zap.Int64("story_id", event.StoryID),
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }

func encode(event Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}
	return body, nil
}

func decode(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" || event.StoryID == 0 {
		return Event{}, fmt.Errorf("incomplete event: type=%q story_id=%d", event.Type, event.StoryID)
	}
	return event, nil
}
