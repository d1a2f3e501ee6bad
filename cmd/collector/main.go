package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/tempest-udp-collector/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/tempest-udp-collector/internal/adapter/kafka"
	"github.com/couchcryptid/tempest-udp-collector/internal/collector"
	"github.com/couchcryptid/tempest-udp-collector/internal/config"
	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
	"github.com/couchcryptid/tempest-udp-collector/internal/observability"
	"github.com/couchcryptid/tempest-udp-collector/internal/snapshot"
	"github.com/couchcryptid/tempest-udp-collector/internal/timeseries"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		slog.Error("failed to build logger", "error", err)
		os.Exit(1)
	}
	metrics := observability.NewMetrics()

	// Bind failures are process-fatal: the operator must fix the address or
	// permissions, there is nothing to retry.
	conn, err := net.ListenPacket("udp", cfg.UDPListenAddr)
	if err != nil {
		logger.Error("failed to bind udp socket", "addr", cfg.UDPListenAddr, "error", err)
		os.Exit(1)
	}

	appender, err := openAppender(cfg)
	if err != nil {
		logger.Error("failed to open timeseries log", "path", cfg.TimeseriesPath, "error", err)
		os.Exit(1)
	}

	var publisher collector.Publisher
	if cfg.SnapshotPath != "" {
		publisher = snapshot.NewPublisher(cfg.SnapshotPath, logger)
		logger.Info("snapshot publishing enabled", "path", cfg.SnapshotPath)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	// Kafka forwarding is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var forwarder collector.Forwarder
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		forwarder = kafkaWriter
		logger.Info("kafka forwarding enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka forwarding disabled")
	}

	col := collector.New(conn, domain.DefaultRegistry(), appender, publisher, forwarder, logger, metrics, cfg.ReadBufferSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, col, cfg.SnapshotPath, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the receive loop. Run returns nil on cancellation and an error
	// only on an unexpected socket failure.
	runErr := make(chan error, 1)
	go func() { runErr <- col.Run(ctx) }()

	var loopErr error
	select {
	case loopErr = <-runErr:
		stop()
	case <-ctx.Done():
		loopErr = <-runErr
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := appender.Close(); err != nil {
		logger.Error("timeseries close error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if loopErr != nil {
		logger.Error("collector error", "error", loopErr)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func openAppender(cfg *config.Config) (*timeseries.Appender, error) {
	if cfg.TimeseriesPath == "" {
		return timeseries.NewAppender(os.Stdout), nil
	}
	return timeseries.Open(cfg.TimeseriesPath)
}
