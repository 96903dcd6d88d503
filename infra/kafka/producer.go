// Package kafka publishes routing events with segmentio/kafka-go.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("kafka: no brokers")

type ProducerConfig struct {
	Brokers []string
	Topic   string
	// WriteTimeout bounds a Publish whose context has no deadline.
	WriteTimeout time.Duration
	BatchTimeout time.Duration
}

func (c *ProducerConfig) applyDefaults() {
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
}

// Producer writes keyed events to one topic. Messages with the same key
// hash to the same partition, so one daemon's events stay in order.
type Producer struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	cfg.applyDefaults()

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		timeout: cfg.WriteTimeout,
	}, nil
}

// Publish writes one message and waits for every in-sync replica.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("kafka: publish to %s: %w", p.writer.Topic, err)
	}
	return nil
}

func (p *Producer) Topic() string { return p.writer.Topic }

func (p *Producer) Close() error {
	return p.writer.Close()
}
