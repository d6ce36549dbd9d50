// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/config"
)

// NewNATSSubscriber builds a durable JetStream subscriber for sale events.
// Subscribers in the same queue group share the stream.
func NewNATSSubscriber(cfg config.NATSConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS subscriber reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(cfg.MaxDeliver),
		natsgo.MaxAckPending(cfg.MaxAckPending),
		natsgo.AckWait(cfg.AckWaitTimeout),
		natsgo.DeliverNew(),
	}

	// A bound stream must already exist; otherwise the stream is created
	// from the topic name.
	autoProvision := true
	if cfg.StreamName != "" {
		subOpts = append(subOpts, natsgo.BindStream(cfg.StreamName))
		autoProvision = false
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision:    autoProvision,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return sub, nil
}

// NewNATSPublisher builds a JetStream publisher for sale events. The CLI
// uses it to emit events; the server only consumes.
func NewNATSPublisher(cfg config.NATSConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: []natsgo.Option{natsgo.MaxReconnects(cfg.MaxReconnects), natsgo.ReconnectWait(cfg.ReconnectWait)},
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: cfg.StreamName == "",
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return pub, nil
}

// Publish sends events to topic, one message each.
func Publish(pub message.Publisher, topic string, events ...*SaleEvent) error {
	msgs := make([]*message.Message, 0, len(events))
	for _, e := range events {
		payload, err := MarshalEvent(e)
		if err != nil {
			return err
		}
		id := e.EventID
		if id == "" {
			id = watermill.NewUUID()
		}
		msgs = append(msgs, message.NewMessage(id, payload))
	}
	if err := pub.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Consumer feeds messages from one topic into a Handler.
type Consumer struct {
	sub     message.Subscriber
	topic   string
	handler *Handler
	logger  zerolog.Logger
}

// NewConsumer binds a subscriber, topic and handler.
func NewConsumer(sub message.Subscriber, topic string, handler *Handler, logger zerolog.Logger) *Consumer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Consumer{
		sub:     sub,
		topic:   topic,
		handler: handler,
		logger:  logger.With().Str("component", "ingest-consumer").Str("topic", topic).Logger(),
	}
}

// Run consumes until ctx is canceled or the subscription closes.
// Successful and permanently failed messages are acked, others nacked.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.logger.Info().Msg("Consuming sale events")

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			if n := c.handler.SweepDedup(); n > 0 {
				c.logger.Debug().Int("expired", n).Msg("Swept dedup entries")
			}
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.process(msg)
		}
	}
}

func (c *Consumer) process(msg *message.Message) {
	err := c.handler.Handle(msg)
	switch {
	case err == nil:
		msg.Ack()
	case IsPermanent(err):
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping sale event")
		msg.Ack()
	default:
		c.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Sale event processing failed")
		msg.Nack()
	}
}

// Close closes the underlying subscriber.
func (c *Consumer) Close() error {
	return c.sub.Close()
}
