package redis

import (
	"context"

	"chatdesk/internal/core/contracts"

	"github.com/redis/go-redis/v9"
)

// RedisBroker carries room broadcasts over Redis pub/sub so every server
// process sees every broadcast, not just the one the sender is attached to.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) channel(room string) string {
	return "chat:" + room
}

func (b *RedisBroker) Publish(ctx context.Context, room string, payload []byte) error {
	return b.rdb.Publish(ctx, b.channel(room), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, room string) (contracts.Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, b.channel(room))
	// Force the SUBSCRIBE round trip so a failed connection surfaces here
	// rather than as a silently empty channel.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	sub := &redisSubscription{
		pubsub:   pubsub,
		payloads: make(chan []byte, 64),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	pubsub   *redis.PubSub
	payloads chan []byte
}

func (s *redisSubscription) pump() {
	defer close(s.payloads)
	for msg := range s.pubsub.Channel() {
		s.payloads <- []byte(msg.Payload)
	}
}

func (s *redisSubscription) Payloads() <-chan []byte {
	return s.payloads
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
