package redisc

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Typing flags carry a TTL so a crashed client cannot leave a stale
// "is typing" indicator behind; the idle-timeout write normally clears
// them first.
const typingTTL = 10 * time.Second

func typingKey(roomID, name string) string {
	return "typing:" + roomID + ":" + name
}

func SetTyping(client *redis.Client, roomID, name string, typing bool) error {
	ctx := context.Background()
	if typing {
		return client.Set(ctx, typingKey(roomID, name), "1", typingTTL).Err()
	}
	return client.Del(ctx, typingKey(roomID, name)).Err()
}

// GetTypingUsers returns the names currently flagged as typing in the
// room. Used to seed the overlay when a session selects a room.
func GetTypingUsers(client *redis.Client, roomID string) ([]string, error) {
	ctx := context.Background()
	prefix := "typing:" + roomID + ":"
	var names []string
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
