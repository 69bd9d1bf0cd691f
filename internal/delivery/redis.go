package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "snapsolve:events"

// RedisPublisher mirrors events onto a pub/sub channel so a UI running in
// another process can follow along.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, logger *slog.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "redis_publisher"),
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(stamp(ev))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.Debug("published event",
		"channel", p.channel,
		"type", ev.Type,
		"request_id", ev.RequestID)
	return nil
}

// RedisRelay re-injects events from a pub/sub channel into a local Publisher.
type RedisRelay struct {
	client  *redis.Client
	channel string
	target  Publisher
	logger  *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisRelay(client *redis.Client, channel string, target Publisher, logger *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		target:  target,
		logger:  logger.With("component", "redis_relay"),
	}
}

// Start returns once the subscription is confirmed, so nothing published
// afterwards is missed.
func (r *RedisRelay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(ctx, pubsub)

	r.logger.Info("relaying events", "channel", r.channel)
	return nil
}

func (r *RedisRelay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *RedisRelay) loop(ctx context.Context, pubsub *redis.PubSub) {
	defer r.wg.Done()
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("receive event", "error", err)
				return
			}

			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.Error("unmarshal event", "error", err)
				continue
			}

			if err := r.target.Publish(ctx, ev); err != nil {
				r.logger.Error("forward event", "type", ev.Type, "error", err)
			}
		}
	}
}
