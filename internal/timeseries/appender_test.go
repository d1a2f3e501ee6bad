package timeseries

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tempest-udp-collector/internal/domain"
)

func sampleObservation() domain.Observation {
	return domain.Observation{
		ReceivedAt:        time.Date(2020, time.June, 24, 12, 0, 0, 0, time.UTC),
		TemperatureF:      72.1,
		Humidity:          55.2,
		UVIndex:           0,
		SolarRadiation:    0,
		PrecipitationIn:   0.0,
		PrecipitationType: "None",
		BatteryVolts:      2.75,
	}
}

func TestFormatRow(t *testing.T) {
	row := FormatRow(sampleObservation())

	cols := strings.Split(row, "\t")
	require.Len(t, cols, 8)
	assert.Equal(t, "2020-06-24 12:00:00", cols[0])
	assert.Equal(t, []string{"72.1", "55.2", "0", "0", "0.0", "None", "2.75"}, cols[1:])
}

func TestFormatRow_Formatting(t *testing.T) {
	obs := sampleObservation()
	obs.UVIndex = 6.5
	obs.SolarRadiation = 812
	obs.PrecipitationIn = 0.5
	obs.PrecipitationType = "Rain"
	obs.BatteryVolts = 2.6

	cols := strings.Split(FormatRow(obs), "\t")
	assert.Equal(t, "6.5", cols[3], "UV keeps its natural precision")
	assert.Equal(t, "812", cols[4], "solar radiation has no forced decimals")
	assert.Equal(t, "0.5", cols[5])
	assert.Equal(t, "Rain", cols[6])
	assert.Equal(t, "2.60", cols[7], "battery always shows two decimals")
}

func TestAppend_WritesOneLinePerObservation(t *testing.T) {
	var buf bytes.Buffer
	a := NewAppender(&buf)

	require.NoError(t, a.Append(sampleObservation()))
	require.NoError(t, a.Append(sampleObservation()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Len(t, strings.Split(line, "\t"), 8)
	}
}

func TestOpen_AppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempest.tsv")

	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Append(sampleObservation()))
	require.NoError(t, a.Close())

	// Reopening must append, not truncate: the log is append-only.
	a, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Append(sampleObservation()))
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestAppend_RowVisibleImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempest.tsv")

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Append(sampleObservation()))

	// Read through a separate handle before Close: the row must already be
	// durable and visible.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Contains(t, string(data), "72.1\t55.2\t0\t0\t0.0\tNone\t2.75")
}
