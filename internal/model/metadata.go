package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata is a free-form key-value envelope attached to artifacts and edges.
//
// The engine only ever inspects the needsRefresh flag; everything else passes
// through opaquely. Values survive a JSON round-trip through storage, so
// numbers come back as json.Number (decoded with UseNumber to avoid float64
// precision loss).
type Metadata map[string]any

// MetaNeedsRefresh is the only metadata key the engine interprets.
const MetaNeedsRefresh = "needsRefresh"

// NeedsRefresh reports whether the envelope carries a truthy needsRefresh
// flag. Truthy values: true, "true", and any nonzero number. The loose
// matching mirrors how the flag behaves after JSON round-trips.
func (m Metadata) NeedsRefresh() bool {
	if m == nil {
		return false
	}
	v, ok := m[MetaNeedsRefresh]
	if !ok {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	case json.Number:
		// Numeric comparison, not string: zero also arrives spelled
		// "0.0", "0e0", or "-0" after a round-trip.
		f, err := val.Float64()
		return err == nil && f != 0
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	}
	return false
}

// EncodeJSON serializes the envelope to JSON for storage.
// A nil envelope serializes to "{}" so the column is never NULL.
func (m Metadata) EncodeJSON() (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(m)); err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// UnmarshalMetadata parses stored JSON back into an envelope.
// Numbers decode as json.Number to keep large integers exact.
func UnmarshalMetadata(data string) (Metadata, error) {
	if data == "" || data == "{}" {
		return Metadata{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var m Metadata
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return m, nil
}
