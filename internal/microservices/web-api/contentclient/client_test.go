package contentclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:      srv.URL,
		APIKey:       "secret-key-0123456789",
		Timeout:      2 * time.Second,
		RPS:          1000,
		Burst:        1000,
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
	}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_GetStoryRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stories/7", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("include_pages"))
		assert.Empty(t, r.Header.Get(apiKeyHeader))
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id": 7, "title": "Night Train", "status": "published",
			"pages": []map[string]interface{}{{"id": 1, "story_id": 7, "text": "All aboard", "choices": []interface{}{}}},
		})
	}, 3)

	story, err := client.GetStory(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, "Night Train", story.Title)
	require.Len(t, story.Pages, 1)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "story has no start page"})
	}, 3)

	_, err := client.GetStartPage(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "story has no start page", apiErr.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_WritesSendKeyAndAreNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key-0123456789", r.Header.Get(apiKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in CreateChoiceInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in.NextPageID == 99 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"choice": map[string]interface{}{"id": 5, "page_id": 1, "text": in.Text, "next_page_id": in.NextPageID},
		})
	}, 3)

	choice, err := client.CreateChoice(context.Background(), 1, CreateChoiceInput{Text: "Jump", NextPageID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, choice.ID)
	assert.Equal(t, "Jump", choice.Text)

	_, err = client.CreateChoice(context.Background(), 1, CreateChoiceInput{Text: "Jump", NextPageID: 99})
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestClient_ListStoriesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "published", q.Get("status"))
		assert.Equal(t, "mystery,sea", q.Get("tags"))
		assert.Equal(t, "", q.Get("author_id"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"stories": nil, "total": 0})
	}, 0)

	stories, err := client.ListStories(context.Background(), StoryQuery{Status: "published", Tags: []string{"mystery", "sea"}})
	require.NoError(t, err)
	assert.NotNil(t, stories)
	assert.Empty(t, stories)
}

func TestClient_BreakerOpensOnRepeatedFailures(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 0)

	for i := 0; i < 5; i++ {
		_, err := client.GetPage(context.Background(), 1)
		assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	}

	_, err := client.GetPage(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.EqualValues(t, 5, atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
	}, 0)

	for i := 0; i < 10; i++ {
		_, err := client.GetPage(context.Background(), 1)
		assert.True(t, IsNotFound(err))
	}
}

func TestClient_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := New(Config{BaseURL: srv.URL, MaxRetries: 1, InitialDelay: time.Millisecond}, nil)
	_, err := client.GetChoice(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, client.Ping(context.Background()), ErrUnavailable)
}
