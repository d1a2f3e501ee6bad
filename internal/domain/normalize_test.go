package domain

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// obsSTPacket follows the documented Tempest observation layout:
// [time, lull, avg, gust, dir, interval, pressure, temp, humidity,
// lux, uv, solar, rain, precip type, lightning km, lightning count,
// battery, report interval].
const obsSTPacket = `{"serial_number":"ST-00012345","type":"obs_st","hub_sn":"HB-00067890",` +
	`"obs":[[1593000000,0,2,5,180,3,1008.5,22.3,55.2,0,0,0,0.2,0,0,0,2.75,1]],"firmware_revision":129}`

func decodePacket(t *testing.T, data string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	return raw
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNormalize_KnownTypes(t *testing.T) {
	reg := DefaultRegistry()

	for id, schema := range reg {
		t.Run(id, func(t *testing.T) {
			rec, err := reg.Normalize(map[string]any{"type": id}, discardLogger())

			require.NoError(t, err)
			assert.Equal(t, id, rec.Type())
			assert.Equal(t, schema.Description, rec["description"])
		})
	}
}

func TestNormalize_ObsST(t *testing.T) {
	reg := DefaultRegistry()
	raw := decodePacket(t, obsSTPacket)

	rec, err := reg.Normalize(raw, discardLogger())
	require.NoError(t, err)

	want := Record{
		"type":                     "obs_st",
		"description":              "Tempest Observation",
		"time_epoch":               1593000000.0,
		"wind_lull_mps":            0.0,
		"wind_avg_mps":             2.0,
		"wind_gust_mps":            5.0,
		"wind_direction_deg":       180.0,
		"wind_sample_interval_sec": 3.0,
		"station_pressure_mb":      1008.5,
		"air_temperature_c":        22.3,
		"relative_humidity":        55.2,
		"illuminance_lux":          0.0,
		"uv_index":                 0.0,
		"solar_radiation_wm2":      0.0,
		"rain_accumulated_mm":      0.2,
		"precipitation_type":       0.0,
		"lightning_avg_km":         0.0,
		"lightning_strike_count":   0.0,
		"battery_volts":            2.75,
		"report_interval_min":      1.0,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("normalized record mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_RapidWind(t *testing.T) {
	reg := DefaultRegistry()
	raw := decodePacket(t, `{"serial_number":"ST-00012345","type":"rapid_wind","hub_sn":"HB-00067890","ob":[1593000001,3.4,270]}`)

	rec, err := reg.Normalize(raw, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "rapid_wind", rec.Type())
	assert.Equal(t, 3.4, rec["wind_speed_mps"])
	assert.Equal(t, 270.0, rec["wind_direction_deg"])
	// Identifying fields are not passthrough for positional types.
	assert.NotContains(t, rec, "serial_number")
}

func TestNormalize_ShortObservationArray(t *testing.T) {
	reg := DefaultRegistry()
	raw := decodePacket(t, `{"type":"obs_st","obs":[[1593000000,0,2,5]]}`)

	rec, err := reg.Normalize(raw, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 5.0, rec["wind_gust_mps"])
	assert.NotContains(t, rec, "wind_sample_interval_sec")
	assert.NotContains(t, rec, "air_temperature_c")
}

func TestNormalize_UnknownType(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"unregistered type", map[string]any{"type": "obs_nonsense"}},
		{"missing type key", map[string]any{"obs": []any{}}},
		{"non-string type", map[string]any{"type": 42.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := reg.Normalize(tt.raw, discardLogger())

			require.ErrorIs(t, err, ErrUnknownEventType)
			assert.Nil(t, rec)
		})
	}
}

func TestNormalize_MalformedObservationField(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name string
		data string
	}{
		{"obs is not an array", `{"type":"obs_st","obs":"garbage"}`},
		{"empty doubled array", `{"type":"obs_st","obs":[]}`},
		{"inner element not an array", `{"type":"obs_st","obs":[5]}`},
		{"obs field absent", `{"type":"obs_st"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := reg.Normalize(decodePacket(t, tt.data), discardLogger())

			require.NoError(t, err)
			assert.Equal(t, "obs_st", rec.Type())
			assert.Equal(t, "Tempest Observation", rec["description"])
			assert.Len(t, rec, 2, "malformed observation data should yield only the seeded keys")
		})
	}
}

func TestNormalize_Passthrough(t *testing.T) {
	reg := DefaultRegistry()
	raw := decodePacket(t, `{"serial_number":"HB-00067890","type":"hub_status","description":"bogus",`+
		`"firmware_revision":"143","uptime":86400,"rssi":-62,"timestamp":1593000000}`)

	rec, err := reg.Normalize(raw, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "HB-00067890", rec["serial_number"])
	assert.Equal(t, "143", rec["firmware_revision"])
	assert.Equal(t, 86400.0, rec["uptime"])
	assert.Equal(t, -62.0, rec["rssi"])
	// Seeded keys win over same-named raw keys (first-write-wins).
	assert.Equal(t, "hub_status", rec["type"])
	assert.Equal(t, "Hub Status", rec["description"])
}

func TestNormalize_ObsSTMissingTemperatureWarns(t *testing.T) {
	reg := DefaultRegistry()
	raw := decodePacket(t, `{"type":"obs_st","obs":[[1593000000,0,2]]}`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec, err := reg.Normalize(raw, logger)

	require.NoError(t, err, "missing temperature is a diagnostic, not a failure")
	assert.Equal(t, "obs_st", rec.Type())
	assert.Contains(t, buf.String(), "missing air temperature")
}
