package domain

// Schema holds the decode rules for one event type: where the positional
// observation data lives, whether it is wrapped in an extra array level, and
// the semantic name for each slot.
type Schema struct {
	Description string

	// ObsField is the top-level key holding the positional array ("obs",
	// "evt", "ob"). Empty for types with no positional data.
	ObsField    string
	DoubleArray bool
	FieldNames  []string

	// PassthroughAll copies every top-level raw key into the record without
	// overwriting keys already set by the positional mapping.
	PassthroughAll bool
}

// Registry maps event type identifiers to their decode rules.
type Registry map[string]Schema

// DefaultRegistry returns the WeatherFlow UDP v143 event table. The returned
// map is shared; treat it as immutable.
func DefaultRegistry() Registry {
	return defaultRegistry
}

var defaultRegistry = Registry{
	"evt_precip": {
		Description: "Rain Start Event",
		ObsField:    "evt",
		FieldNames:  []string{"time_epoch"},
	},
	"evt_strike": {
		Description: "Lightning Strike Event",
		ObsField:    "evt",
		FieldNames:  []string{"time_epoch", "lightning_distance_km", "lightning_energy"},
	},
	"rapid_wind": {
		Description: "Rapid Wind",
		ObsField:    "ob",
		FieldNames:  []string{"time_epoch", "wind_speed_mps", "wind_direction_deg"},
	},
	"obs_air": {
		Description: "Air Observation",
		ObsField:    "obs",
		DoubleArray: true,
		FieldNames: []string{
			"time_epoch",
			"station_pressure_mb",
			"air_temperature_c",
			"relative_humidity",
			"lightning_strike_count",
			"lightning_avg_km",
			"battery_volts",
			"report_interval_min",
		},
	},
	"obs_sky": {
		Description: "Sky Observation",
		ObsField:    "obs",
		DoubleArray: true,
		FieldNames: []string{
			"time_epoch",
			"illuminance_lux",
			"uv_index",
			"rain_accumulated_mm",
			"wind_lull_mps",
			"wind_avg_mps",
			"wind_gust_mps",
			"wind_direction_deg",
			"battery_volts",
			"report_interval_min",
			"solar_radiation_wm2",
			"local_day_rain_accum_mm",
			"precipitation_type",
			"wind_sample_interval_sec",
		},
	},
	"obs_st": {
		Description: "Tempest Observation",
		ObsField:    "obs",
		DoubleArray: true,
		FieldNames: []string{
			"time_epoch",
			"wind_lull_mps",
			"wind_avg_mps",
			"wind_gust_mps",
			"wind_direction_deg",
			"wind_sample_interval_sec",
			"station_pressure_mb",
			"air_temperature_c",
			"relative_humidity",
			"illuminance_lux",
			"uv_index",
			"solar_radiation_wm2",
			"rain_accumulated_mm",
			"precipitation_type",
			"lightning_avg_km",
			"lightning_strike_count",
			"battery_volts",
			"report_interval_min",
		},
	},
	"device_status": {
		Description:    "Device Status",
		PassthroughAll: true,
	},
	"hub_status": {
		Description:    "Hub Status",
		PassthroughAll: true,
	},
	// Firmware debug chatter. No stable positional layout is published, so
	// these are passthrough like the status packets.
	"light_debug": {
		Description:    "Light Debug",
		PassthroughAll: true,
	},
	"wind_debug": {
		Description:    "Wind Debug",
		PassthroughAll: true,
	},
	"rain_debug": {
		Description:    "Rain Debug",
		PassthroughAll: true,
	},
}
