package redisc

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const invalidatePrefix = "chat:invalidate:"

// PublishInvalidate announces that a collection changed; subscribed
// hubs re-run the affected snapshot queries and push fresh results.
func PublishInvalidate(client *redis.Client, collection string, payload []byte) error {
	return client.Publish(context.Background(), invalidatePrefix+collection, payload).Err()
}

func SubscribeInvalidations(client *redis.Client, handler func(collection string, payload []byte)) {
	ctx := context.Background()
	pubsub := client.PSubscribe(ctx, invalidatePrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for msg := range ch {
		collection := msg.Channel[len(invalidatePrefix):]
		handler(collection, []byte(msg.Payload))
		slog.Debug("invalidation", "collection", collection)
	}
}
