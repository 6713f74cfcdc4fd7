package publisher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fjod/go_pizza/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const outboxPrefix = "outbox_"

// OutboxStore is what the outbox needs from the key-value store: it must be able to list pending keys.
type OutboxStore interface {
	storage.Store
	storage.Scanner
}

// Outbox records events in the key-value store instead of sending them, so an order is never
// placed without its event surviving a broker outage. OutboxRelay delivers them later.
type Outbox struct {
	store OutboxStore
	newID func() string
}

func NewOutbox(store OutboxStore) *Outbox {
	return &Outbox{store: store, newID: uuid.NewString}
}

// Publish appends the event. Keys sort by occurrence time so the relay delivers in order.
func (o *Outbox) Publish(ctx context.Context, event OrderEvent) error {
	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	key := fmt.Sprintf("%s%020d_%s", outboxPrefix, at.UnixNano(), o.newID())
	if err := storage.SetJSON(ctx, o.store, key, event); err != nil {
		return fmt.Errorf("store %s event: %w", event.Type, err)
	}
	return nil
}

func (o *Outbox) Close() error { return nil }

// Pending returns the number of undelivered events.
func (o *Outbox) Pending(ctx context.Context) (int, error) {
	keys, err := o.store.Keys(ctx, outboxPrefix)
	return len(keys), err
}

// OutboxRelay drains the outbox into a downstream publisher on a ticker.
type OutboxRelay struct {
	outbox    *Outbox
	target    Publisher
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

func NewOutboxRelay(outbox *Outbox, target Publisher, interval time.Duration, logger *zap.Logger) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxRelay{
		outbox:    outbox,
		target:    target,
		interval:  interval,
		batchSize: 100,
		logger:    logger,
	}
}

func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Flush(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Flush delivers up to one batch of pending events and returns how many were delivered.
// Delivery stops at the first failure so later events never overtake an earlier one.
func (r *OutboxRelay) Flush(ctx context.Context) int {
	keys, err := r.outbox.store.Keys(ctx, outboxPrefix)
	if err != nil {
		r.logger.Error("failed to fetch outbox events", zap.Error(err))
		return 0
	}
	sort.Strings(keys)
	if len(keys) > r.batchSize {
		keys = keys[:r.batchSize]
	}

	delivered := 0
	for _, key := range keys {
		var event OrderEvent
		err := storage.GetJSON(ctx, r.outbox.store, key, &event)
		switch {
		case errors.Is(err, storage.ErrKeyNotFound):
			continue
		case errors.Is(err, storage.ErrCorrupt):
			r.logger.Warn("dropping corrupt outbox event", zap.String("key", key), zap.Error(err))
			r.remove(ctx, key)
			continue
		case err != nil:
			r.logger.Error("failed to read outbox event", zap.String("key", key), zap.Error(err))
			return delivered
		}

		if err := r.target.Publish(ctx, event); err != nil {
			r.logger.Warn("outbox delivery failed, will retry",
				zap.String("event_type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.Error(err))
			return delivered
		}
		r.remove(ctx, key)
		delivered++
	}
	return delivered
}

func (r *OutboxRelay) remove(ctx context.Context, key string) {
	if err := r.outbox.store.Remove(ctx, key); err != nil {
		r.logger.Error("failed to mark outbox event as delivered", zap.String("key", key), zap.Error(err))
	}
}
