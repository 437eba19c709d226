package kafka

import (
	"Perish/config"
	"Perish/pkg/log"
	"context"
	"errors"
	"time"

	k "github.com/segmentio/kafka-go"
)

var ErrDisabled = errors.New("kafka writer disabled")

type Writer struct {
	w *k.Writer
}

// NewWriter 埋点丢了不心疼，异步写 + 不等 ack
func NewWriter(cfg *config.KafkaConfig) *Writer {
	if cfg == nil || len(cfg.Brokers) == 0 || cfg.Topic == "" {
		log.L.Warn("kafka not configured, analytics disabled")
		return &Writer{}
	}
	w := &k.Writer{
		Addr:         k.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &k.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: k.RequireNone,
		Async:        true,
	}
	return &Writer{w: w}
}

func (w *Writer) Close() error {
	if w == nil || w.w == nil {
		return nil
	}
	return w.w.Close()
}

func (w *Writer) Publish(ctx context.Context, key string, value []byte) error {
	if w == nil || w.w == nil {
		return ErrDisabled
	}
	return w.w.WriteMessages(ctx, k.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}
