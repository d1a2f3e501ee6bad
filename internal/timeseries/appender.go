// Package timeseries appends distilled observations to a tab-separated log,
// one row per qualifying event. Rows are flushed as they are written so
// followers (tail -f) see them immediately.
package timeseries

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
)

// Columns, in order: local timestamp, temperature °F, humidity %, UV index,
// solar radiation W/m², precipitation in, precipitation type, battery V.
// The column set is fixed; adding a column is a format change, and old rows
// are never rewritten.
const timestampLayout = "2006-01-02 15:04:05"

// Appender writes rows to an underlying stream, syncing after each row when
// the stream is a file.
type Appender struct {
	w    io.Writer
	file *os.File // nil when writing to a plain stream
}

// NewAppender wraps an existing stream (typically stdout).
func NewAppender(w io.Writer) *Appender {
	a := &Appender{w: w}
	if f, ok := w.(*os.File); ok {
		a.file = f
	}
	return a
}

// Open opens (or creates) the log at path for appending.
func Open(path string) (*Appender, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open timeseries log: %w", err)
	}
	return &Appender{w: f, file: f}, nil
}

// Append serializes one row and writes it in a single call, then forces it
// to durable storage. A row is fully visible to readers before Append
// returns.
func (a *Appender) Append(obs domain.Observation) error {
	if _, err := io.WriteString(a.w, FormatRow(obs)+"\n"); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	if a.file != nil {
		if err := a.file.Sync(); err != nil {
			// Sync is meaningless for character devices like stdout.
			if !isSyncUnsupported(err) {
				return fmt.Errorf("flush row: %w", err)
			}
		}
	}
	return nil
}

// Close closes the underlying file, if any.
func (a *Appender) Close() error {
	if a.file == nil {
		return nil
	}
	return a.file.Close()
}

// FormatRow renders the fixed tab-separated column tuple for one observation.
func FormatRow(obs domain.Observation) string {
	return strings.Join([]string{
		obs.ReceivedAt.Format(timestampLayout),
		strconv.FormatFloat(obs.TemperatureF, 'f', 1, 64),
		strconv.FormatFloat(obs.Humidity, 'f', 1, 64),
		strconv.FormatFloat(obs.UVIndex, 'f', -1, 64),
		strconv.FormatFloat(obs.SolarRadiation, 'f', -1, 64),
		strconv.FormatFloat(obs.PrecipitationIn, 'f', 1, 64),
		obs.PrecipitationType,
		strconv.FormatFloat(obs.BatteryVolts, 'f', 2, 64),
	}, "\t")
}

func isSyncUnsupported(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.ENOTSUP)
}
