package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Limits on the datagram read buffer. WeatherFlow packets are a few hundred
// bytes; 64KiB is the UDP payload ceiling.
const (
	minReadBuffer = 512
	maxReadBuffer = 65536
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	UDPListenAddr  string
	ReadBufferSize int

	// TimeseriesPath is the append-only TSV log; empty means stdout.
	TimeseriesPath string
	// SnapshotPath is the atomically replaced current-conditions file;
	// empty disables snapshot publishing.
	SnapshotPath string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogOutput       string
	ShutdownTimeout time.Duration

	// Kafka forwarding configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	readBufferSize, err := parseReadBufferSize()
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		UDPListenAddr:   envOrDefault("UDP_LISTEN_ADDR", ":50222"),
		ReadBufferSize:  readBufferSize,
		TimeseriesPath:  os.Getenv("TIMESERIES_PATH"),
		SnapshotPath:    os.Getenv("SNAPSHOT_PATH"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		LogOutput:       envOrDefault("LOG_OUTPUT", "stderr"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "weatherflow-events"),
	}

	if cfg.UDPListenAddr == "" {
		return nil, errors.New("UDP_LISTEN_ADDR is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when forwarding is enabled")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseShutdownTimeout() (time.Duration, error) {
	s := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	return d, nil
}

func parseReadBufferSize() (int, error) {
	s := os.Getenv("READ_BUFFER_SIZE")
	if s == "" {
		return 1024, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minReadBuffer || n > maxReadBuffer {
		return 0, fmt.Errorf("invalid READ_BUFFER_SIZE: must be %d-%d", minReadBuffer, maxReadBuffer)
	}
	return n, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
