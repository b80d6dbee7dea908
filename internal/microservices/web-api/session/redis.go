package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storyhub/internal/microservices/web-api/models"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisCache mirrors play session cursors in Redis hashes. A nil cache, or one without a
// client, behaves as an always-empty cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(sessionKey string, storyID int64) string {
	return fmt.Sprintf("playsession:%s:story:%d", sessionKey, storyID)
}

func (r *RedisCache) enabled() bool {
	return r != nil && r.client != nil
}

// Save writes the cursor as one hash and refreshes its expiry.
func (r *RedisCache) Save(ctx context.Context, s *models.PlaySession) error {
	if !r.enabled() {
		return nil
	}
	path, err := json.Marshal([]int64(s.Path))
	if err != nil {
		return err
	}
	userID := ""
	if s.UserID != nil {
		userID = *s.UserID
	}

	key := cacheKey(s.SessionKey, s.StoryID)
	fields := map[string]any{
		"story_id":        s.StoryID,
		"current_page_id": s.CurrentPageID,
		"user_id":         userID,
		"path":            string(path),
		"created_at":      s.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":      s.UpdatedAt.Format(time.RFC3339Nano),
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	return err
}

// Get returns nil without error on a miss.
func (r *RedisCache) Get(ctx context.Context, sessionKey string, storyID int64) (*models.PlaySession, error) {
	if !r.enabled() {
		return nil, nil
	}
	fields, err := r.client.HGetAll(ctx, cacheKey(sessionKey, storyID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	s := &models.PlaySession{SessionKey: sessionKey, StoryID: storyID}
	if s.CurrentPageID, err = strconv.ParseInt(fields["current_page_id"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt cached session %s: %w", cacheKey(sessionKey, storyID), err)
	}
	var path []int64
	if raw := fields["path"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &path); err != nil {
			return nil, fmt.Errorf("corrupt cached path: %w", err)
		}
	}
	if path == nil {
		path = []int64{}
	}
	s.Path = path
	if userID := fields["user_id"]; userID != "" {
		s.UserID = &userID
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return s, nil
}

func (r *RedisCache) Delete(ctx context.Context, sessionKey string, storyID int64) error {
	if !r.enabled() {
		return nil
	}
	return r.client.Del(ctx, cacheKey(sessionKey, storyID)).Err()
}

func (r *RedisCache) Close() error {
	if !r.enabled() {
		return nil
	}
	return r.client.Close()
}
