package statusboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/moon-community/fto-queue-service/internal/domain"
)

// RedisBoard keeps each board list as a Redis list keyed by the board's
// channel and message ids. Names are stored structured, never parsed back
// out of rendered text.
type RedisBoard struct {
	client *redis.Client
}

// NewRedisBoard creates the adapter.
func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client}
}

func boardKey(ref domain.BoardRef, list List) string {
	return fmt.Sprintf("board:%d:%d:%s", ref.ChannelID, ref.MessageID, list)
}

// Append adds a display name to the end of a list.
func (b *RedisBoard) Append(ctx context.Context, ref domain.BoardRef, list List, name string) error {
	return b.client.RPush(ctx, boardKey(ref, list), name).Err()
}

// Remove deletes the first occurrence of a display name from a list.
func (b *RedisBoard) Remove(ctx context.Context, ref domain.BoardRef, list List, name string) error {
	return b.client.LRem(ctx, boardKey(ref, list), 1, name).Err()
}

// RemoveEverywhere deletes the display name from every tracked list.
func (b *RedisBoard) RemoveEverywhere(ctx context.Context, ref domain.BoardRef, name string) error {
	for _, list := range Lists {
		if err := b.client.LRem(ctx, boardKey(ref, list), 1, name).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the current names per list.
func (b *RedisBoard) Snapshot(ctx context.Context, ref domain.BoardRef) (map[List][]string, error) {
	result := make(map[List][]string, len(Lists))
	for _, list := range Lists {
		names, err := b.client.LRange(ctx, boardKey(ref, list), 0, -1).Result()
		if err != nil {
			return nil, err
		}
		result[list] = names
	}
	return result, nil
}
