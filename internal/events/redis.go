package events

import (
	"context"
	"encoding/json"
	"time"

	"randevulu/internal/store"

	"github.com/redis/go-redis/v9"
)

const defaultRedisChannel = "randevulu.events"

// redisPublisher fans events out over Redis pub/sub, one channel per
// deployment.
type redisPublisher struct {
	client  *redis.Client
	channel string
}

func newRedisPublisher(addr, channel string) *redisPublisher {
	if channel == "" {
		channel = defaultRedisChannel
	}
	return &redisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		channel: channel,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, event store.OutboxEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, body).Err()
}

func (p *redisPublisher) Name() string { return SinkRedis }

func (p *redisPublisher) Close() error {
	return p.client.Close()
}
