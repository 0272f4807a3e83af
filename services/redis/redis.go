package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	lobby_constants "Showdown/constants/lobby"
	redis_models "Showdown/models/redis"
	redis_utils "Showdown/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations (chat history + presence). Everything
// here is best-effort ephemeral state; the lobby documents in Postgres are
// the source of truth.
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(addr string, db int) *RedisClient {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// SaveChatMessage appends a message to the lobby's chat history list and
// trims it to the configured limit.
// Key format: "chat_history:{lobbyId}"
func (rc *RedisClient) SaveChatMessage(msg *redis_models.ChatMessage) error {
	key := redis_utils.FormatChatHistoryKey(msg.LobbyID)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling chat message: %v", err)
	}

	pipe := rc.Client.Pipeline()
	pipe.RPush(rc.Ctx, key, data)
	pipe.LTrim(rc.Ctx, key, int64(-lobby_constants.ChatHistoryLimit), -1)
	pipe.Expire(rc.Ctx, key, 24*time.Hour)
	_, err = pipe.Exec(rc.Ctx)
	if err != nil {
		return fmt.Errorf("error saving chat message: %v", err)
	}
	return nil
}

// GetChatHistory returns the lobby's retained chat messages, oldest first.
// Key format: "chat_history:{lobbyId}"
func (rc *RedisClient) GetChatHistory(lobbyID string) ([]redis_models.ChatMessage, error) {
	key := redis_utils.FormatChatHistoryKey(lobbyID)
	entries, err := rc.Client.LRange(rc.Ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("error getting chat history: %v", err)
	}

	messages := make([]redis_models.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg redis_models.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			// skip corrupt entries instead of dropping the whole history
			log.Printf("[REDIS-WARN] Skipping bad chat entry in %s: %v", key, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DeleteChatHistory drops a lobby's chat list (called when a lobby dies)
func (rc *RedisClient) DeleteChatHistory(lobbyID string) error {
	key := redis_utils.FormatChatHistoryKey(lobbyID)
	if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting chat history: %v", err)
	}
	return nil
}

// SavePlayerPresence stores which socket a user is connected through.
// Key format: "presence:{username}", TTL 24 hours
func (rc *RedisClient) SavePlayerPresence(presence *redis_models.PlayerPresence) error {
	key := redis_utils.FormatPresenceKey(presence.Username)
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error marshaling presence: %v", err)
	}
	return rc.Client.Set(rc.Ctx, key, data, 24*time.Hour).Err()
}

// GetPlayerPresence retrieves a user's presence entry, nil if absent
func (rc *RedisClient) GetPlayerPresence(username string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(username)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting presence: %v", err)
	}

	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence: %v", err)
	}
	return &presence, nil
}

// DeletePlayerPresence clears a user's presence entry on disconnect
func (rc *RedisClient) DeletePlayerPresence(username string) error {
	key := redis_utils.FormatPresenceKey(username)
	if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting presence: %v", err)
	}
	return nil
}

// CleanupKeys removes the specified keys from Redis (used by tests)
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.Client.Del(rc.Ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
