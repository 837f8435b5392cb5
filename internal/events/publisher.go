// Package events forwards committed outbox events to an external sink.
package events

import (
	"context"
	"errors"
	"strings"

	"randevulu/internal/store"

	"go.uber.org/zap"
)

const (
	SinkLog     = "log"
	SinkNoop    = "noop"
	SinkFail    = "fail"
	SinkWebhook = "webhook"
	SinkRedis   = "redis"
	SinkKafka   = "kafka"
)

type Publisher interface {
	Publish(ctx context.Context, event store.OutboxEvent) error
	Name() string
	Close() error
}

type Config struct {
	Sink         string
	WebhookURL   string
	WebhookToken string
	RedisAddr    string
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
}

// New picks the publisher for cfg.Sink. A sink missing its address falls
// back to logging so a half-configured environment still starts.
func New(cfg Config, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	kind := strings.ToLower(strings.TrimSpace(cfg.Sink))
	switch kind {
	case "", SinkLog:
		return logPublisher{logger: logger}
	case SinkNoop:
		return noopPublisher{}
	case SinkFail:
		return failPublisher{}
	case SinkWebhook:
		if cfg.WebhookURL == "" {
			logger.Warn("webhook sink selected without EVENTS_WEBHOOK_URL, logging events instead")
			return logPublisher{logger: logger}
		}
		return newWebhookPublisher(cfg.WebhookURL, cfg.WebhookToken)
	case SinkRedis:
		if cfg.RedisAddr == "" {
			logger.Warn("redis sink selected without REDIS_ADDR, logging events instead")
			return logPublisher{logger: logger}
		}
		return newRedisPublisher(cfg.RedisAddr, cfg.RedisChannel)
	case SinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			logger.Warn("kafka sink selected without KAFKA_BROKERS, logging events instead")
			return logPublisher{logger: logger}
		}
		return newKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		if strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://") {
			return newWebhookPublisher(cfg.Sink, cfg.WebhookToken)
		}
		logger.Warn("unknown event sink, logging events instead", zap.String("sink", cfg.Sink))
		return logPublisher{logger: logger}
	}
}

type logPublisher struct {
	logger *zap.Logger
}

func (p logPublisher) Publish(ctx context.Context, event store.OutboxEvent) error {
	p.logger.Info("outbox event",
		zap.Int64("seq", event.Seq),
		zap.String("event_id", event.EventID),
		zap.String("tenant_id", event.TenantID),
		zap.String("type", event.Type),
		zap.ByteString("payload", event.Payload))
	return nil
}

func (logPublisher) Name() string { return SinkLog }
func (logPublisher) Close() error { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, event store.OutboxEvent) error { return nil }
func (noopPublisher) Name() string                                               { return SinkNoop }
func (noopPublisher) Close() error                                               { return nil }

type failPublisher struct{}

func (failPublisher) Publish(ctx context.Context, event store.OutboxEvent) error {
	return errors.New("sink failure")
}

func (failPublisher) Name() string { return SinkFail }
func (failPublisher) Close() error { return nil }
