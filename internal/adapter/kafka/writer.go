// Package kafka forwards normalized station events to a Kafka topic for
// downstream consumers. Forwarding is optional and feature-flagged; the
// collector treats forward failures as non-fatal.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/tempest-udp-collector/internal/config"
	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
)

// Writer produces normalized records to the configured topic.
// It implements collector.Forwarder.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Forward serializes and publishes one normalized record. Messages are keyed
// by the reporting device's serial number so per-device ordering holds
// across partitions.
func (w *Writer) Forward(ctx context.Context, rec domain.Record) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Record into a Kafka message.
func serializeToMessage(rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(rec)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(rec.Type())},
			{Key: "received_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}

// messageKey prefers the device serial number; positional event types do not
// pass it through, so those fall back to the event type.
func messageKey(rec domain.Record) string {
	if sn, ok := rec["serial_number"].(string); ok && sn != "" {
		return sn
	}
	return rec.Type()
}
