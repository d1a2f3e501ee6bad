package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistillObservation(t *testing.T) {
	frozen := time.Date(2020, time.June, 24, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	reg := DefaultRegistry()
	raw := decodePacket(t, obsSTPacket)
	rec, err := reg.Normalize(raw, discardLogger())
	require.NoError(t, err)

	obs, err := DistillObservation(rec)
	require.NoError(t, err)

	assert.Equal(t, frozen, obs.ReceivedAt)
	assert.Equal(t, 72.1, obs.TemperatureF, "22.3°C converts to 72.1°F")
	assert.Equal(t, 55.2, obs.Humidity)
	assert.Equal(t, 0.0, obs.UVIndex)
	assert.Equal(t, 0.0, obs.SolarRadiation)
	assert.Equal(t, 0.0, obs.PrecipitationIn, "0.2mm rounds to 0.0in")
	assert.Equal(t, "None", obs.PrecipitationType)
	assert.Equal(t, 2.75, obs.BatteryVolts)
}

func TestDistillObservation_MissingTemperature(t *testing.T) {
	rec := Record{"type": "obs_st", "description": "Tempest Observation"}

	_, err := DistillObservation(rec)

	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "air_temperature_c")
}

func TestDistillObservation_UnitConversions(t *testing.T) {
	tests := []struct {
		name       string
		tempC      float64
		rainMM     float64
		wantTempF  float64
		wantPrecip float64
	}{
		{"freezing", 0, 0, 32.0, 0},
		{"boiling", 100, 0, 212.0, 0},
		{"half inch of rain", 20, 12.7, 68.0, 0.5},
		{"negative temperature", -10, 0, 14.0, 0},
		{"rounding up", 22.35, 25.4, 72.2, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{
				"air_temperature_c":   tt.tempC,
				"rain_accumulated_mm": tt.rainMM,
			}
			obs, err := DistillObservation(rec)

			require.NoError(t, err)
			assert.Equal(t, tt.wantTempF, obs.TemperatureF)
			assert.Equal(t, tt.wantPrecip, obs.PrecipitationIn)
		})
	}
}

func TestDistillObservation_PrecipitationTypes(t *testing.T) {
	tests := []struct {
		code  float64
		label string
	}{
		{0, "None"},
		{1, "Rain"},
		{2, "Hail"},
		{3, "RainHail"},
		{9, "None"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rec := Record{
				"air_temperature_c":  20.0,
				"precipitation_type": tt.code,
			}
			obs, err := DistillObservation(rec)

			require.NoError(t, err)
			assert.Equal(t, tt.label, obs.PrecipitationType)
		})
	}
}

func TestDistillObservation_PartialRecordDefaults(t *testing.T) {
	rec := Record{"air_temperature_c": 15.0}

	obs, err := DistillObservation(rec)

	require.NoError(t, err)
	assert.Equal(t, 59.0, obs.TemperatureF)
	assert.Equal(t, 0.0, obs.Humidity)
	assert.Equal(t, 0.0, obs.BatteryVolts)
	assert.Equal(t, "None", obs.PrecipitationType)
}
