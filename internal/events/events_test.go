package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsumerHandle_DecodesAndDispatches(t *testing.T) {
	var got Event
	c := &Consumer{
		handler: func(_ context.Context, e Event) error {
			got = e
			return nil
		},
		logger: zap.NewNop(),
	}

	event := New(PageDeleted, 12)
	event.PageID = 40
	body, err := encode(event)
	require.NoError(t, err)

	require.NoError(t, c.Handle(context.Background(), body))
	assert.Equal(t, PageDeleted, got.Type)
	assert.Equal(t, int64(12), got.StoryID)
	assert.Equal(t, int64(40), got.PageID)
}

func TestConsumerHandle_RejectsBadBodies(t *testing.T) {
	called := false
	c := &Consumer{
		handler: func(context.Context, Event) error {
			called = true
			return nil
		},
		logger: zap.NewNop(),
	}

	assert.Error(t, c.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, c.Handle(context.Background(), []byte(`{"type":"story.deleted"}`)))
	assert.False(t, called)
}

func TestConsumerHandle_PropagatesHandlerError(t *testing.T) {
	boom := errors.New("boom")
	c := &Consumer{
		handler: func(context.Context, Event) error { return boom },
		logger:  zap.NewNop(),
	}

	body, err := encode(New(StoryDeleted, 3))
	require.NoError(t, err)
	assert.ErrorIs(t, c.Handle(context.Background(), body), boom)
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(zap.NewNop())
	assert.NoError(t, p.Publish(context.Background(), New(StoryCreated, 1)))
	assert.NoError(t, p.Close())
}
