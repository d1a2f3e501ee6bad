package domain

import "errors"

// Sentinel errors for expected per-packet anomalies. Callers match with
// errors.Is and drop the packet; none of these should terminate the receive
// loop.
var (
	// ErrUnknownEventType means the packet's "type" key is absent or not in
	// the registry.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrMissingField means a qualifying observation lacks a field required
	// for unit conversion.
	ErrMissingField = errors.New("missing expected field")
)

// Record is a normalized event: semantic field name to value. It always
// contains "type" and "description"; the remaining keys come from the
// schema's positional mapping and, for status packets, passthrough copies of
// the raw packet. Records are built fresh per packet and never retained.
type Record map[string]any

// Type returns the event type identifier, or "" if somehow unset.
func (r Record) Type() string {
	t, _ := r["type"].(string)
	return t
}

// Float reads a numeric field. JSON decoding produces float64, but fixtures
// and tests may store untyped ints.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
