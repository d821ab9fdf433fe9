package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/lineage/internal/model"
)

// Timestamps are stored as RFC 3339 UTC strings with nanosecond precision.
// String comparison on this format agrees with chronological order, and the
// round-trip through TEXT is lossless.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// parseNullTime maps a nullable column to *time.Time for deleted_at.
func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// marshalMetadata serializes a metadata envelope to JSON TEXT for storage.
func marshalMetadata(m model.Metadata) (string, error) {
	return m.EncodeJSON()
}

// unmarshalMetadata parses stored JSON TEXT back into an envelope.
// Numbers decode as json.Number to keep large integers exact.
func unmarshalMetadata(data string) (model.Metadata, error) {
	return model.UnmarshalMetadata(data)
}

// marshalDetails serializes an audit details payload to JSON TEXT.
// Storage uses plain JSON; the hash input uses model.MarshalCanonical.
func marshalDetails(details map[string]any) (string, error) {
	if len(details) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("marshal details: %w", err)
	}
	return string(data), nil
}

// unmarshalDetails parses stored JSON TEXT back into a details payload.
func unmarshalDetails(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var details map[string]any
	if err := dec.Decode(&details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	return details, nil
}

// inPlaceholders builds a "?,?,?" placeholder list and the matching args
// slice for IN clauses.
func inPlaceholders(ids []string) (string, []any) {
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args[i] = id
	}
	return string(placeholders), args
}
