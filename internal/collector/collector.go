// Package collector owns the UDP receive loop: it blocks for datagrams,
// decodes and normalizes them, and drives the timeseries, snapshot, and
// forwarding outputs. It is the only long-lived component; everything it
// calls is synchronous and per-packet.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
	"github.com/couchcryptid/tempest-udp-collector/internal/observability"
)

// Appender persists one distilled observation as a timeseries row.
type Appender interface {
	Append(obs domain.Observation) error
}

// Publisher replaces the current-conditions snapshot.
type Publisher interface {
	Publish(obs domain.Observation) error
}

// Forwarder republishes a normalized record to a downstream sink.
type Forwarder interface {
	Forward(ctx context.Context, rec domain.Record) error
}

// Collector runs the receive loop. Publisher and Forwarder may be nil to
// disable snapshots and forwarding respectively.
type Collector struct {
	conn      net.PacketConn
	registry  domain.Registry
	appender  Appender
	publisher Publisher
	forwarder Forwarder
	logger    *slog.Logger
	metrics   *observability.Metrics
	bufSize   int
	ready     atomic.Bool
}

// New creates a Collector reading from conn. The caller binds the socket so
// bind failures stay process-fatal at startup; the Collector owns the
// connection from here and closes it when Run exits.
func New(
	conn net.PacketConn,
	registry domain.Registry,
	appender Appender,
	publisher Publisher,
	forwarder Forwarder,
	logger *slog.Logger,
	metrics *observability.Metrics,
	bufSize int,
) *Collector {
	return &Collector{
		conn:      conn,
		registry:  registry,
		appender:  appender,
		publisher: publisher,
		forwarder: forwarder,
		logger:    logger,
		metrics:   metrics,
		bufSize:   bufSize,
	}
}

// CheckReadiness returns nil once the collector has processed at least one
// observation end to end.
func (c *Collector) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("no observations processed yet")
	}
	return nil
}

// Run blocks on the socket until ctx is cancelled or the socket fails.
// Per-packet anomalies (malformed JSON, unknown types, missing fields) are
// logged and dropped; only socket-level failures end the loop with an error.
// Cancellation takes effect between datagrams: the socket is closed to
// unblock the pending read, and in-flight writes complete first.
func (c *Collector) Run(ctx context.Context) error {
	c.logger.Info("collector started", "addr", c.conn.LocalAddr().String(), "buffer_size", c.bufSize)
	c.metrics.CollectorRunning.Set(1)
	defer c.metrics.CollectorRunning.Set(0)

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()
	defer c.conn.Close()

	// Oversized datagrams are truncated by the read; the decoder then
	// rejects them as malformed rather than crashing on partial JSON.
	buf := make([]byte, c.bufSize)
	for {
		n, addr, err := c.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				c.logger.Info("collector stopping", "reason", context.Cause(ctx))
				return nil
			}
			return fmt.Errorf("read datagram: %w", err)
		}
		c.handlePacket(ctx, buf[:n], addr)
	}
}

func (c *Collector) handlePacket(ctx context.Context, payload []byte, addr net.Addr) {
	c.metrics.PacketsReceived.Inc()
	c.metrics.PacketBytes.Observe(float64(len(payload)))

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		c.logger.Warn("dropping malformed packet", "error", err, "from", addr.String(), "bytes", len(payload))
		c.metrics.DecodeErrors.Inc()
		return
	}

	rec, err := c.registry.Normalize(raw, c.logger)
	if err != nil {
		c.logger.Warn("dropping packet", "error", err, "from", addr.String())
		c.metrics.UnknownEvents.Inc()
		return
	}
	c.metrics.EventsNormalized.WithLabelValues(rec.Type()).Inc()
	c.logger.Debug("event normalized", "type", rec.Type())

	if c.forwarder != nil {
		if err := c.forwarder.Forward(ctx, rec); err != nil {
			c.logger.Warn("forward failed", "error", err, "type", rec.Type())
			c.metrics.ForwardErrors.Inc()
		}
	}

	// Only the temperature-bearing kind reaches the distilled outputs.
	if rec.Type() != "obs_st" {
		return
	}

	obs, err := domain.DistillObservation(rec)
	if err != nil {
		c.logger.Warn("dropping observation", "error", err, "packet", raw)
		c.metrics.DistillErrors.Inc()
		return
	}

	// Append and publish are deliberately independent: a snapshot failure
	// must not lose the timeseries row, and vice versa.
	if err := c.appender.Append(obs); err != nil {
		c.logger.Error("timeseries append failed", "error", err)
		c.metrics.AppendErrors.Inc()
	} else {
		c.metrics.RowsAppended.Inc()
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(obs); err != nil {
			c.logger.Error("snapshot publish failed", "error", err)
			c.metrics.SnapshotErrors.Inc()
		} else {
			c.metrics.SnapshotPublishes.Inc()
		}
	}

	c.ready.Store(true)
}
