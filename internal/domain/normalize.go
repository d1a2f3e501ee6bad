package domain

import (
	"fmt"
	"log/slog"
)

// Normalize converts a raw decoded packet into a named Record using the
// registry's decode rules.
//
// The record is seeded with "type" and "description", then filled from the
// positional observation array (slots beyond the schema's name list are
// skipped, and a short array simply yields a partial record). Passthrough
// types copy every raw key afterwards, first-write-wins, so the seeded
// keys always win over same-named raw keys.
//
// An unknown or missing "type" fails with ErrUnknownEventType and no partial
// record. A malformed observation array is treated as empty observation
// data, not an error.
func (r Registry) Normalize(raw map[string]any, logger *slog.Logger) (Record, error) {
	t, ok := raw["type"].(string)
	if !ok || t == "" {
		return nil, fmt.Errorf("%w: packet has no type key", ErrUnknownEventType)
	}
	schema, ok := r[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, t)
	}

	rec := Record{
		"type":        t,
		"description": schema.Description,
	}

	if schema.ObsField != "" {
		if v, present := raw[schema.ObsField]; present {
			for i, value := range observationSlots(v, schema.DoubleArray) {
				if i >= len(schema.FieldNames) {
					break
				}
				rec[schema.FieldNames[i]] = value
			}
		}
	}

	if schema.PassthroughAll {
		for k, v := range raw {
			if _, set := rec[k]; !set {
				rec[k] = v
			}
		}
	}

	// Known upstream anomaly: some Tempest firmware emits obs_st packets
	// with truncated observation arrays. Partial records are still returned.
	if t == "obs_st" {
		if _, present := rec["air_temperature_c"]; !present {
			logger.Warn("obs_st packet missing air temperature", "packet", raw)
		}
	}

	return rec, nil
}

// observationSlots extracts the positional value slice from an observation
// field. A doubled array ("[[...]]") is unwrapped one level; any unexpected
// shape yields no slots rather than an error.
func observationSlots(v any, doubleArray bool) []any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	if !doubleArray {
		return arr
	}
	if len(arr) == 0 {
		return nil
	}
	inner, ok := arr[0].([]any)
	if !ok {
		return nil
	}
	return inner
}
