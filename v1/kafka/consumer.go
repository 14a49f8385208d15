package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/avroframe/v1/record"
)

// Handler receives every successfully decoded record together with the
// message it came from. A non-nil error stops the consumer; the message is
// not committed and will be redelivered.
type Handler func(ctx context.Context, msg kafka.Message, rec record.Record) error

type decoded struct {
	rec record.Record
	err error
}

// Run consumes until ctx is cancelled or handler fails.
//
// Rejected records never reach the handler. They are committed like handled
// ones, so a bad record cannot stall its partition. Up to cfg.Workers
// messages are decoded concurrently, but handling and commits follow fetch
// order.
//
// Run returns nil when ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	msgs := make(chan kafka.Message, c.cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(msgs)
		for {
			msg, err := c.reader.FetchMessage(gctx)
			if err != nil {
				return err
			}
			select {
			case msgs <- msg:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for {
			batch, ok := c.nextBatch(gctx, msgs)
			if !ok {
				return gctx.Err()
			}
			if err := c.process(gctx, batch, handler); err != nil {
				return err
			}
		}
	})

	err := g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.logger.Info("Kafka consumer stopped", nil, map[string]interface{}{"topic": c.cfg.Topic})
		return nil
	}
	return err
}

// nextBatch blocks for one message and then takes whatever else is already
// buffered, up to cfg.Workers messages.
func (c *Consumer) nextBatch(ctx context.Context, msgs <-chan kafka.Message) ([]kafka.Message, bool) {
	var first kafka.Message
	select {
	case m, ok := <-msgs:
		if !ok {
			return nil, false
		}
		first = m
	case <-ctx.Done():
		return nil, false
	}

	batch := []kafka.Message{first}
	for len(batch) < c.cfg.Workers {
		select {
		case m, ok := <-msgs:
			if !ok {
				return batch, true
			}
			batch = append(batch, m)
		default:
			return batch, true
		}
	}
	return batch, true
}

func (c *Consumer) process(ctx context.Context, batch []kafka.Message, handler Handler) error {
	results := make([]decoded, len(batch))

	var dg errgroup.Group
	dg.SetLimit(c.cfg.Workers)
	for i := range batch {
		dg.Go(func() error {
			results[i].rec, results[i].err = c.decode(ctx, batch[i])
			return nil
		})
	}
	_ = dg.Wait()

	for i, msg := range batch {
		if err := results[i].err; err != nil {
			c.logger.Debug("Skipping rejected message", err, position(msg))
		} else if err := handler(ctx, msg, results[i].rec); err != nil {
			return fmt.Errorf("handler failed at %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("failed to commit %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
	}
	return nil
}

func (c *Consumer) decode(ctx context.Context, msg kafka.Message) (record.Record, error) {
	if c.propagator != nil && len(msg.Headers) > 0 {
		ctx = c.propagator.SetCarrierOnContext(ctx, headerCarrier(msg.Headers))
	}
	return c.decoder.Decode(ctx, msg.Value)
}

func position(msg kafka.Message) map[string]interface{} {
	return map[string]interface{}{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	}
}
