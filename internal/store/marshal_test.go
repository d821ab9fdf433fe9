package store

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"
)

func TestTimeRoundTrip(t *testing.T) {
	// Nanosecond precision survives, and non-UTC inputs normalize to UTC.
	in := time.Date(2026, 3, 10, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))

	out, err := parseTime(formatTime(in))
	if err != nil {
		t.Fatalf("parseTime() failed: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip changed instant: %v != %v", out, in)
	}
	if out.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", out.Location())
	}
}

func TestFormatTime_OrdersLexically(t *testing.T) {
	// String comparison on stored timestamps must agree with time order.
	t1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Nanosecond)
	t3 := t1.Add(time.Hour)

	if !(formatTime(t1) < formatTime(t2) && formatTime(t2) < formatTime(t3)) {
		t.Errorf("lexical order broken: %q, %q, %q", formatTime(t1), formatTime(t2), formatTime(t3))
	}
}

func TestParseNullTime(t *testing.T) {
	out, err := parseNullTime(sql.NullString{})
	if err != nil || out != nil {
		t.Errorf("null: got %v, %v; want nil, nil", out, err)
	}

	out, err = parseNullTime(sql.NullString{Valid: true, String: ""})
	if err != nil || out != nil {
		t.Errorf("empty: got %v, %v; want nil, nil", out, err)
	}

	want := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	out, err = parseNullTime(sql.NullString{Valid: true, String: formatTime(want)})
	if err != nil {
		t.Fatalf("parseNullTime() failed: %v", err)
	}
	if out == nil || !out.Equal(want) {
		t.Errorf("got %v, want %v", out, want)
	}

	if _, err := parseNullTime(sql.NullString{Valid: true, String: "garbage"}); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	text, err := marshalDetails(nil)
	if err != nil {
		t.Fatalf("marshalDetails(nil) failed: %v", err)
	}
	if text != "{}" {
		t.Errorf("empty details = %q, want {}", text)
	}

	out, err := unmarshalDetails("{}")
	if err != nil || out != nil {
		t.Errorf("unmarshalDetails({}) = %v, %v; want nil, nil", out, err)
	}

	in := map[string]any{"name": "Figure 1", "rev": json.Number("9007199254740993")}
	text, err = marshalDetails(in)
	if err != nil {
		t.Fatalf("marshalDetails() failed: %v", err)
	}
	out, err = unmarshalDetails(text)
	if err != nil {
		t.Fatalf("unmarshalDetails() failed: %v", err)
	}
	if out["name"] != "Figure 1" {
		t.Errorf("name = %v", out["name"])
	}
	if out["rev"] != json.Number("9007199254740993") {
		t.Errorf("rev = %v (%T), want json.Number", out["rev"], out["rev"])
	}
}

func TestInPlaceholders(t *testing.T) {
	ph, args := inPlaceholders([]string{"a", "b", "c"})
	if ph != "?,?,?" {
		t.Errorf("placeholders = %q, want ?,?,?", ph)
	}
	if len(args) != 3 || args[0] != "a" || args[2] != "c" {
		t.Errorf("args = %v", args)
	}

	ph, args = inPlaceholders([]string{"x"})
	if ph != "?" || len(args) != 1 {
		t.Errorf("single: %q, %v", ph, args)
	}
}
