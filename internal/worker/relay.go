package worker

import (
	"context"
	"time"

	"randevulu/internal/events"
	"randevulu/internal/metrics"
	"randevulu/internal/store"

	"go.uber.org/zap"
)

const relayOffsetName = "outbox"

type Relay struct {
	store     store.OutboxStore
	publisher events.Publisher
	logger    *zap.Logger
	batchSize int
}

func NewRelay(st store.OutboxStore, publisher events.Publisher, logger *zap.Logger, batchSize int) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{store: st, publisher: publisher, logger: logger, batchSize: batchSize}
}

// Run publishes one batch after the stored offset. A failed publish ends the
// batch so later events are not delivered ahead of it; the offset still
// advances past everything published before the failure.
func (r *Relay) Run(ctx context.Context) error {
	last, err := r.store.GetRelayOffset(ctx, relayOffsetName)
	if err != nil {
		return err
	}

	batch, err := r.store.ListOutboxEvents(ctx, last, r.batchSize)
	if err != nil {
		return err
	}

	start := last
	var publishErr error
	for _, event := range batch {
		began := time.Now()
		err := r.publisher.Publish(ctx, event)
		metrics.EventPublishDuration.WithLabelValues(r.publisher.Name()).Observe(time.Since(began).Seconds())
		if err != nil {
			metrics.EventsPublishedTotal.WithLabelValues(r.publisher.Name(), "failed").Inc()
			r.logger.Warn("outbox publish failed",
				zap.Int64("seq", event.Seq),
				zap.String("type", event.Type),
				zap.String("sink", r.publisher.Name()),
				zap.Error(err))
			publishErr = err
			break
		}
		metrics.EventsPublishedTotal.WithLabelValues(r.publisher.Name(), "ok").Inc()
		last = event.Seq
	}

	if last != start {
		if err := r.store.UpdateRelayOffset(ctx, relayOffsetName, last); err != nil {
			return err
		}
	}
	return publishErr
}
