package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dzlegal-backend/models"

	"github.com/go-redis/redis/v8"
)

// RedisCache stores consultation transcripts and radar results in Redis
type RedisCache struct {
	client        *redis.Client
	transcriptTTL time.Duration
}

// NewRedisCache pings the server before returning
func NewRedisCache(ctx context.Context, client *redis.Client, transcriptTTL time.Duration) (*RedisCache, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{
		client:        client,
		transcriptTTL: transcriptTTL,
	}, nil
}

// Append pushes messages to the session transcript and refreshes its TTL
func (r *RedisCache) Append(ctx context.Context, sessionID string, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		values = append(values, data)
	}

	key := transcriptKey(sessionID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, r.transcriptTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the transcript in order; an unknown session yields an empty list
func (r *RedisCache) List(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	items, err := r.client.LRange(ctx, transcriptKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}

	msgs := make([]models.ChatMessage, 0, len(items))
	for _, item := range items {
		var m models.ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Get returns a cached radar result
func (r *RedisCache) Get(ctx context.Context, key string) (*models.RadarResult, bool, error) {
	data, err := r.client.Get(ctx, radarKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get radar result: %w", err)
	}

	var result models.RadarResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("unmarshal radar result: %w", err)
	}
	return &result, true, nil
}

// Set caches a radar result
func (r *RedisCache) Set(ctx context.Context, key string, result *models.RadarResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal radar result: %w", err)
	}
	return r.client.Set(ctx, radarKey(key), data, ttl).Err()
}

// Close closes the underlying client
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("transcript:%s", sessionID)
}

func radarKey(key string) string {
	return fmt.Sprintf("radar:%s", key)
}
