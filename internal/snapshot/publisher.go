// Package snapshot publishes the most recent observation as a
// current-conditions file that external processes poll. Every publish
// replaces the file in one atomic rename, so a concurrent reader sees either
// the previous complete document or the new one, never a partial write.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
)

// Document is the current-conditions snapshot schema. precipitation_type is
// omitted when no precipitation is falling so that polling consumers can key
// on its presence.
type Document struct {
	LastUpdated       int64   `json:"last_updated"`
	Temperature       float64 `json:"temperature"`
	Humidity          float64 `json:"humidity"`
	UVIndex           float64 `json:"uv_index"`
	SolarRadiation    float64 `json:"solar_radiation"`
	Precipitation     float64 `json:"precipitation"`
	PrecipitationType string  `json:"precipitation_type,omitempty"`
	BatteryVoltage    float64 `json:"battery_voltage"`
}

// Publisher atomically replaces the snapshot file on each update.
type Publisher struct {
	path   string
	logger *slog.Logger
}

// NewPublisher creates a Publisher targeting path.
func NewPublisher(path string, logger *slog.Logger) *Publisher {
	return &Publisher{path: path, logger: logger}
}

// Publish serializes the observation and replaces the snapshot file. The
// document is written to a temporary file in the target's directory, synced,
// and renamed onto the target; the rename is the only visible mutation. On
// any failure the previous snapshot is left untouched.
func (p *Publisher) Publish(obs domain.Observation) error {
	doc := documentFor(obs)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp := tempName(p.path)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}

	// Best effort: a pre-existing snapshot's mode and ownership carry over
	// so long-running readers keep their access. Failures here are not
	// publish failures.
	copyFileAttrs(p.path, tmp)

	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	p.logger.Debug("snapshot published", "path", p.path, "last_updated", doc.LastUpdated)
	return nil
}

func documentFor(obs domain.Observation) Document {
	doc := Document{
		LastUpdated:    obs.ReceivedAt.Unix(),
		Temperature:    obs.TemperatureF,
		Humidity:       obs.Humidity,
		UVIndex:        obs.UVIndex,
		SolarRadiation: obs.SolarRadiation,
		Precipitation:  obs.PrecipitationIn,
		BatteryVoltage: obs.BatteryVolts,
	}
	if obs.PrecipitationType != "None" {
		doc.PrecipitationType = obs.PrecipitationType
	}
	return doc
}

// tempName builds a collision-resistant temporary path in the target's
// directory (same filesystem, so the final rename is atomic). The target's
// extension is kept so format-sniffing tools still recognize the temp file.
func tempName(path string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := filepath.Base(path)
	stem = stem[:len(stem)-len(ext)]
	return filepath.Join(dir, fmt.Sprintf(".%s.%d.%d.%04d%s",
		stem, os.Getpid(), time.Now().UnixNano(), rand.Intn(10000), ext))
}

func copyFileAttrs(from, to string) {
	st, err := os.Stat(from)
	if err != nil {
		return
	}
	_ = os.Chmod(to, st.Mode().Perm())
	if sys, ok := st.Sys().(*syscall.Stat_t); ok {
		_ = os.Chown(to, int(sys.Uid), int(sys.Gid))
	}
}
