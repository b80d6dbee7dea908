// Package contentclient is the web tier's HTTP client for the content API.
package contentclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyhub/internal/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiPrefix    = "/api/v1"
	apiKeyHeader = "X-API-KEY"
	maxDelay     = 5 * time.Second
	breakerName  = "content-api"
)

var ErrUnavailable = errors.New("content service unavailable")

var _ API = (*Client)(nil)

// APIError is a non-2xx answer from the content API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content api: HTTP %d: %s", e.StatusCode, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// API is everything the web tier asks of the content API.
type API interface {
	ListStories(ctx context.Context, q StoryQuery) ([]Story, error)
	GetStory(ctx context.Context, id int64, includePages bool) (*Story, error)
	GetStartPage(ctx context.Context, storyID int64) (int64, error)
	GetTree(ctx context.Context, storyID int64) (*Tree, error)
	CreateStory(ctx context.Context, in CreateStoryInput) (*Story, error)
	UpdateStory(ctx context.Context, id int64, in UpdateStoryInput) (*Story, error)
	DeleteStory(ctx context.Context, id int64) error

	ListPages(ctx context.Context, storyID int64) ([]Page, error)
	GetPage(ctx context.Context, id int64) (*Page, error)
	CreatePage(ctx context.Context, storyID int64, in CreatePageInput) (*Page, error)
	UpdatePage(ctx context.Context, id int64, in UpdatePageInput) (*Page, error)
	DeletePage(ctx context.Context, id int64) error

	GetChoice(ctx context.Context, id int64) (*Choice, error)
	CreateChoice(ctx context.Context, pageID int64, in CreateChoiceInput) (*Choice, error)
	UpdateChoice(ctx context.Context, id int64, in UpdateChoiceInput) (*Choice, error)
	DeleteChoice(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
}

type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RPS          float64
	Burst        int
	MaxRetries   int
	InitialDelay time.Duration
}

// Client handles content API requests with rate limiting, retries and a circuit breaker.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[*rawResponse]
	maxRetries   int
	initialDelay time.Duration
	logger       *zap.Logger
}

type rawResponse struct {
	status int
	body   []byte
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 40
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		rateLimiter:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		maxRetries:   cfg.MaxRetries,
		initialDelay: cfg.InitialDelay,
		logger:       logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	c.breaker = gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// client errors mean the content API is healthy and answered
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			status := StatusOf(err)
			return status >= 400 && status < 500 && status != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// --- stories ---

func (c *Client) ListStories(ctx context.Context, q StoryQuery) ([]Story, error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if len(q.Tags) > 0 {
		params.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.AuthorID != "" {
		params.Set("author_id", q.AuthorID)
	}

	var out storiesEnvelope
	if err := c.doRequest(ctx, http.MethodGet, "/stories", params, nil, &out); err != nil {
		return nil, err
	}
	if out.Stories == nil {
		out.Stories = []Story{}
	}
	return out.Stories, nil
}

func (c *Client) GetStory(ctx context.Context, id int64, includePages bool) (*Story, error) {
	var params url.Values
	if includePages {
		params = url.Values{"include_pages": {"true"}}
	}
	var out Story
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/stories/%d", id), params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStartPage(ctx context.Context, storyID int64) (int64, error) {
	var out startPageResponse
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/stories/%d/start", storyID), nil, nil, &out); err != nil {
		return 0, err
	}
	return out.PageID, nil
}

func (c *Client) GetTree(ctx context.Context, storyID int64) (*Tree, error) {
	var out Tree
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/stories/%d/tree", storyID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateStory(ctx context.Context, in CreateStoryInput) (*Story, error) {
	var out storyEnvelope
	if err := c.doRequest(ctx, http.MethodPost, "/stories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Story, nil
}

func (c *Client) UpdateStory(ctx context.Context, id int64, in UpdateStoryInput) (*Story, error) {
	var out storyEnvelope
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/stories/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Story, nil
}

func (c *Client) DeleteStory(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/stories/%d", id), nil, nil, nil)
}

// --- pages ---

func (c *Client) ListPages(ctx context.Context, storyID int64) ([]Page, error) {
	var out pagesEnvelope
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/stories/%d/pages", storyID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Pages, nil
}

func (c *Client) GetPage(ctx context.Context, id int64) (*Page, error) {
	var out Page
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/pages/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePage(ctx context.Context, storyID int64, in CreatePageInput) (*Page, error) {
	var out pageEnvelope
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/stories/%d/pages", storyID), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Page, nil
}

func (c *Client) UpdatePage(ctx context.Context, id int64, in UpdatePageInput) (*Page, error) {
	var out pageEnvelope
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/pages/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Page, nil
}

func (c *Client) DeletePage(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/pages/%d", id), nil, nil, nil)
}

// --- choices ---

func (c *Client) GetChoice(ctx context.Context, id int64) (*Choice, error) {
	var out Choice
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/choices/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChoice(ctx context.Context, pageID int64, in CreateChoiceInput) (*Choice, error) {
	var out choiceEnvelope
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/pages/%d/choices", pageID), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Choice, nil
}

func (c *Client) UpdateChoice(ctx context.Context, id int64, in UpdateChoiceInput) (*Choice, error) {
	var out choiceEnvelope
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/choices/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Choice, nil
}

func (c *Client) DeleteChoice(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/choices/%d", id), nil, nil, nil)
}

// Ping calls the content API health endpoint, outside the /api/v1 prefix.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: "unhealthy"}
	}
	return nil
}

// doRequest performs one logical call. Only GETs are retried, with exponential backoff on
// network errors, 429 and 5xx.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body, result interface{}) error {
	fullURL := c.baseURL + apiPrefix + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	retries := 0
	if method == http.MethodGet {
		retries = c.maxRetries
	}

	var lastErr error
	delay := c.initialDelay
	for attempt := 0; attempt <= retries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		raw, err := c.breaker.Execute(func() (*rawResponse, error) {
			return c.attempt(ctx, method, fullURL, payload)
		})
		if err == nil {
			metrics.ContentRequests.WithLabelValues("ok").Inc()
			if result == nil || len(raw.body) == 0 {
				return nil
			}
			if err := json.Unmarshal(raw.body, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ContentRequests.WithLabelValues("circuit_open").Inc()
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		status := StatusOf(err)
		switch {
		case status == 0:
			metrics.ContentRequests.WithLabelValues("network_error").Inc()
		case status >= 500:
			metrics.ContentRequests.WithLabelValues("server_error").Inc()
		default:
			metrics.ContentRequests.WithLabelValues("client_error").Inc()
		}

		if !shouldRetry(status) || ctx.Err() != nil {
			if status == 0 {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return err
		}

		lastErr = err
		if attempt < retries {
			c.logger.Warn("Content request failed, retrying",
				zap.String("method", method),
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = minDuration(delay*2, maxDelay)
		}
	}

	if StatusOf(lastErr) == 0 {
		return fmt.Errorf("%w: request failed after %d attempts: %v", ErrUnavailable, retries+1, lastErr)
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, fullURL string, payload []byte) (*rawResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "storyhub-web/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" && method != http.MethodGet {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}
	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func errorMessage(status int, data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return http.StatusText(status)
}

// shouldRetry reports whether a failure warrants another attempt. Status 0 is a transport error.
func shouldRetry(status int) bool {
	return status == 0 ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

