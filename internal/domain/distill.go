package domain

import (
	"fmt"
	"math"
	"time"
)

// Observation is the distilled, unit-converted subset of an obs_st record
// that gets persisted to the timeseries log and the snapshot file.
type Observation struct {
	ReceivedAt        time.Time
	TemperatureF      float64 // °F, rounded to 1 decimal
	Humidity          float64 // %, rounded to 1 decimal
	UVIndex           float64
	SolarRadiation    float64 // W/m²
	PrecipitationIn   float64 // inches this interval, rounded to 1 decimal
	PrecipitationType string  // "None", "Rain", "Hail", "RainHail"
	BatteryVolts      float64
}

// Precipitation type codes per the WeatherFlow UDP reference.
var precipTypeLabels = map[int]string{
	0: "None",
	1: "Rain",
	2: "Hail",
	3: "RainHail",
}

// DistillObservation derives the persisted fields from a normalized obs_st
// record. Air temperature is the one field that must be present; everything
// else defaults to zero when absent, matching how partial firmware packets
// are handled upstream.
func DistillObservation(rec Record) (Observation, error) {
	tempC, ok := rec.Float("air_temperature_c")
	if !ok {
		return Observation{}, fmt.Errorf("%w: air_temperature_c", ErrMissingField)
	}

	humidity, _ := rec.Float("relative_humidity")
	uv, _ := rec.Float("uv_index")
	solar, _ := rec.Float("solar_radiation_wm2")
	rainMM, _ := rec.Float("rain_accumulated_mm")
	battery, _ := rec.Float("battery_volts")

	return Observation{
		ReceivedAt:        clock.Now(),
		TemperatureF:      round1(celsiusToFahrenheit(tempC)),
		Humidity:          round1(humidity),
		UVIndex:           uv,
		SolarRadiation:    solar,
		PrecipitationIn:   round1(rainMM / 25.4),
		PrecipitationType: precipTypeLabel(rec),
		BatteryVolts:      battery,
	}, nil
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// precipTypeLabel maps the precipitation_type slot to its label. Absent or
// unrecognized codes read as "None" rather than failing the observation.
func precipTypeLabel(rec Record) string {
	code, ok := rec.Float("precipitation_type")
	if !ok {
		return "None"
	}
	label, ok := precipTypeLabels[int(code)]
	if !ok {
		return "None"
	}
	return label
}
