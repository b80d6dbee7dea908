package service

import (
	"context"
	"errors"

	"storyhub/internal/events"
	"storyhub/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrStoryNotFound       = errors.New("story not found")
	ErrPageNotFound        = errors.New("page not found")
	ErrChoiceNotFound      = errors.New("choice not found")
	ErrNoStartPage         = errors.New("story has no start page")
	ErrStartPageNotInStory = errors.New("start page must belong to the same story")
	ErrNextPageNotFound    = errors.New("next page not found")
	ErrNextPageNotInStory  = errors.New("next page must belong to the same story")
	ErrTitleRequired       = errors.New("title is required")
	ErrTextRequired        = errors.New("text is required")
)

// eventSink publishes best-effort: a broker outage must not fail a graph write.
type eventSink struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func (s eventSink) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		s.logger.Warn("Event publish failed",
			zap.String("type", event.Type),
			zap.Int64("story_id", event.StoryID),
			zap.Error(err),
		)
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}
