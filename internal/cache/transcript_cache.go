package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"winkclass/internal/model"
)

// TranscriptCache keeps student chat transcripts in Redis. Transcripts are
// transient: a TTL bounds how long an idle conversation survives.
type TranscriptCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewTranscriptCache(client *redisv9.Client, ttl time.Duration) *TranscriptCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TranscriptCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *TranscriptCache) Get(ctx context.Context, instructorID uint, sessionKey string) ([]model.Turn, error) {
	key := c.transcriptKey(instructorID, sessionKey)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get transcript failed: %w", err)
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("unmarshal cached transcript failed: %w", err)
	}
	return turns, nil
}

func (c *TranscriptCache) Set(ctx context.Context, instructorID uint, sessionKey string, turns []model.Turn) error {
	key := c.transcriptKey(instructorID, sessionKey)
	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal transcript failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set transcript failed: %w", err)
	}
	return nil
}

func (c *TranscriptCache) Delete(ctx context.Context, instructorID uint, sessionKey string) error {
	key := c.transcriptKey(instructorID, sessionKey)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete transcript failed: %w", err)
	}
	return nil
}

func (c *TranscriptCache) transcriptKey(instructorID uint, sessionKey string) string {
	return fmt.Sprintf("wink:transcript:%d:%s", instructorID, sessionKey)
}
