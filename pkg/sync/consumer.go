package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
)

const (
	ackWait       = 30 * time.Second
	maxDeliver    = 5
	pullMaxWait   = 5 * time.Second
	fetchErrPause = time.Second
)

// Handler processes one raw change-capture envelope. A nil return means
// the delivery is acknowledged; an error requests redelivery.
type Handler interface {
	Handle(ctx context.Context, data []byte) error
}

// Consumer wraps a durable JetStream pull consumer configured for
// strictly ordered, one-at-a-time processing: at most one unacknowledged
// delivery exists at any time, so the reconciliation buffer is only ever
// mutated by the current event.
type Consumer struct {
	consumer     jetstream.Consumer
	streamName   string
	consumerName string
	logger       logger.Logger
}

// NewConsumer creates or retrieves the durable pull consumer.
func NewConsumer(ctx context.Context, js jetstream.JetStream, streamName, consumerName, subject string, log logger.Logger) (*Consumer, error) {
	consumer, err := js.Consumer(ctx, streamName, consumerName)
	if err != nil {
		cfg := jetstream.ConsumerConfig{
			Durable:       consumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			AckWait:       ackWait,
			MaxDeliver:    maxDeliver,
			MaxAckPending: 1,
		}

		if subject != "" {
			cfg.FilterSubject = subject
		}

		consumer, err = js.CreateConsumer(ctx, streamName, cfg)
		if err != nil {
			return nil, fmt.Errorf("create consumer %s on stream %s: %w", consumerName, streamName, err)
		}
	}

	return &Consumer{
		consumer:     consumer,
		streamName:   streamName,
		consumerName: consumerName,
		logger:       log,
	}, nil
}

// ProcessMessages fetches and processes deliveries one at a time until
// the context is canceled. The next delivery is not fetched before the
// current one is acknowledged or rejected.
func (c *Consumer) ProcessMessages(ctx context.Context, handler Handler) {
	c.logger.Info().
		Str("stream", c.streamName).
		Str("consumer", c.consumerName).
		Msg("Starting pull consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Stopping message processing")
			return
		default:
		}

		batch, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(pullMaxWait))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			c.logger.Warn().Err(err).Msg("Failed to fetch message")
			time.Sleep(fetchErrPause)

			continue
		}

		for msg := range batch.Messages() {
			c.handleMessage(ctx, msg, handler)
		}

		if err := batch.Error(); err != nil {
			c.logger.Warn().Err(err).Msg("Fetch error")
		}
	}
}

// handleMessage runs one delivery through the handler and maps the
// outcome onto the transport acknowledgement.
func (c *Consumer) handleMessage(ctx context.Context, msg jetstream.Msg, handler Handler) {
	metadata, _ := msg.Metadata()

	var delivered uint64
	if metadata != nil {
		delivered = metadata.NumDelivered
	}

	if err := handler.Handle(ctx, msg.Data()); err != nil {
		if delivered >= maxDeliver {
			c.logger.Error().
				Err(err).
				Uint64("deliveries", delivered).
				Msg("Giving up on message after repeated sync failures")

			c.ack(msg)

			return
		}

		c.logger.Warn().Err(err).Uint64("deliveries", delivered).Msg("Sync failed, requesting redelivery")

		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Error().Err(nakErr).Msg("Failed to nak message")
		}

		return
	}

	c.ack(msg)
}

func (c *Consumer) ack(msg jetstream.Msg) {
	if err := msg.Ack(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to ack message")
	}
}
