package events

import (
	"context"
	"errors"
	"strings"

	"randevulu/internal/store"
)

type fanout []Publisher

// Fanout publishes every event to each publisher in order and stops at the
// first failure, so the relay retries the event on all of them.
func Fanout(publishers ...Publisher) Publisher {
	if len(publishers) == 1 {
		return publishers[0]
	}
	return fanout(publishers)
}

func (f fanout) Publish(ctx context.Context, event store.OutboxEvent) error {
	for _, publisher := range f {
		if err := publisher.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) Name() string {
	names := make([]string, 0, len(f))
	for _, publisher := range f {
		names = append(names, publisher.Name())
	}
	return strings.Join(names, "+")
}

func (f fanout) Close() error {
	var errs []error
	for _, publisher := range f {
		errs = append(errs, publisher.Close())
	}
	return errors.Join(errs...)
}
