package service

import (
	"context"

	"storyhub/internal/events"
	"storyhub/internal/metrics"
	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/session"

	"go.uber.org/zap"
)

// RoutingKeys are the content events the web tier subscribes to.
var RoutingKeys = []string{events.StoryDeleted, events.PageDeleted, events.StoryStatusChanged}

// NewSessionPurger returns the consumer handler that drops play cursors made stale by
// content deletions or by a story leaving the published state.
func NewSessionPurger(store session.Store, logger *zap.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		var (
			purged int
			err    error
		)
		switch event.Type {
		case events.StoryDeleted:
			purged, err = store.PurgeStory(ctx, event.StoryID)
		case events.PageDeleted:
			purged, err = store.PurgePage(ctx, event.StoryID, event.PageID)
		case events.StoryStatusChanged:
			if event.Status != contentclient.StatusSuspended && event.Status != contentclient.StatusDraft {
				metrics.EventsConsumed.WithLabelValues(event.Type, "ignored").Inc()
				return nil
			}
			purged, err = store.PurgeStory(ctx, event.StoryID)
		default:
			logger.Debug("Event ignored", zap.String("type", event.Type), zap.Int64("story_id", event.StoryID))
			metrics.EventsConsumed.WithLabelValues(event.Type, "ignored").Inc()
			return nil
		}
		if err != nil {
			metrics.EventsConsumed.WithLabelValues(event.Type, "error").Inc()
			return err
		}

		metrics.EventsConsumed.WithLabelValues(event.Type, "ok").Inc()
		logger.Info("Play sessions purged",
			zap.String("type", event.Type),
			zap.Int64("story_id", event.StoryID),
			zap.Int64("page_id", event.PageID),
			zap.Int("purged", purged))
		return nil
	}
}
