// Package domain models the WeatherFlow Tempest UDP broadcast protocol.
//
// # Data Source
//
// A WeatherFlow hub broadcasts one JSON document per UDP datagram on port
// 50222 of the local network. Every packet carries a "type" string that
// selects its layout, plus identifying fields such as "serial_number" and
// "hub_sn". The protocol is documented at
// https://weatherflow.github.io/Tempest/api/udp/v143/.
//
// # Positional Observation Arrays
//
// Observation packets do not use named fields for measurements. Instead a
// single key ("obs", "evt", or "ob" depending on type) holds an array whose
// slots have fixed positional meaning. The obs_st (Tempest) layout:
//
//	[0]  epoch seconds          [9]  illuminance (lux)
//	[1]  wind lull (m/s)        [10] UV index
//	[2]  wind avg (m/s)         [11] solar radiation (W/m²)
//	[3]  wind gust (m/s)        [12] rain this interval (mm)
//	[4]  wind direction (°)     [13] precipitation type (0 none, 1 rain, 2 hail, 3 rain+hail)
//	[5]  wind sample interval   [14] lightning avg distance (km)
//	[6]  station pressure (mb)  [15] lightning strike count
//	[7]  air temperature (°C)   [16] battery (V)
//	[8]  relative humidity (%)  [17] report interval (min)
//
// obs_st, obs_air, and obs_sky wrap the observation array in one extra array
// level ("[[...]]"); rapid_wind and the evt_* types do not. Firmware has been
// observed to emit obs arrays shorter than the documented layout, so trailing
// slots are treated as optional rather than rejected.
//
// # Status Packets
//
// device_status and hub_status have no fixed measurement layout; every
// top-level key is copied into the normalized record verbatim. Firmware
// updates add keys to these packets without notice, which is why they are
// passthrough rather than positional.
//
// # Decoding Model
//
// The [Registry] externalizes the per-type layout as data: which key holds
// the observation array, whether it is double-wrapped, and the ordered slot
// names. Adding a new event type is a table entry, not new control flow.
// Raw packets stay weakly typed (map[string]any) until normalization
// succeeds; only [DistillObservation] converts to typed, unit-converted
// fields.
package domain
