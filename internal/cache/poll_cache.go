package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
)

// PollCache holds the full direct-chat message list per chat in redis so
// the fixed-interval polling from both the widget and the admin dashboard
// reads memory instead of MySQL. A short-lived dirty marker set on every
// mutation suppresses reads and rewrites until concurrent writers settle.
type PollCache struct {
	client         *redisv9.Client
	messagesTTL    time.Duration
	dirtyMarkerTTL time.Duration
}

func NewPollCache(client *redisv9.Client, messagesTTL, dirtyMarkerTTL time.Duration) *PollCache {
	if messagesTTL <= 0 {
		messagesTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &PollCache{
		client:         client,
		messagesTTL:    messagesTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *PollCache) GetMessages(ctx context.Context, chatID uint) ([]model.DirectMessage, bool, error) {
	key := c.messagesKey(chatID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get poll messages failed: %w", err)
	}

	var messages []model.DirectMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached poll messages failed: %w", err)
	}
	return messages, true, nil
}

func (c *PollCache) SetMessages(ctx context.Context, chatID uint, messages []model.DirectMessage) error {
	key := c.messagesKey(chatID)
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal poll messages cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.messagesTTL).Err(); err != nil {
		return fmt.Errorf("redis set poll messages failed: %w", err)
	}
	return nil
}

func (c *PollCache) Invalidate(ctx context.Context, chatID uint) error {
	key := c.messagesKey(chatID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete poll messages failed: %w", err)
	}
	return nil
}

func (c *PollCache) MarkDirty(ctx context.Context, chatID uint) error {
	key := c.dirtyKey(chatID)
	if err := c.client.Set(ctx, key, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *PollCache) IsDirty(ctx context.Context, chatID uint) (bool, error) {
	key := c.dirtyKey(chatID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *PollCache) messagesKey(chatID uint) string {
	return fmt.Sprintf("direct:poll:%d", chatID)
}

func (c *PollCache) dirtyKey(chatID uint) string {
	return fmt.Sprintf("direct:poll:dirty:%d", chatID)
}
