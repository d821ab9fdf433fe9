package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsRefreshTruthiness(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want bool
	}{
		{"nil metadata", nil, false},
		{"missing key", Metadata{"other": true}, false},
		{"bool true", Metadata{MetaNeedsRefresh: true}, true},
		{"bool false", Metadata{MetaNeedsRefresh: false}, false},
		{"string true", Metadata{MetaNeedsRefresh: "true"}, true},
		{"string TRUE", Metadata{MetaNeedsRefresh: "TRUE"}, true},
		{"string false", Metadata{MetaNeedsRefresh: "false"}, false},
		{"string other", Metadata{MetaNeedsRefresh: "yes"}, false},
		{"number one", Metadata{MetaNeedsRefresh: json.Number("1")}, true},
		{"number zero", Metadata{MetaNeedsRefresh: json.Number("0")}, false},
		{"number zero point zero", Metadata{MetaNeedsRefresh: json.Number("0.0")}, false},
		{"number zero exponent", Metadata{MetaNeedsRefresh: json.Number("0e0")}, false},
		{"number negative zero", Metadata{MetaNeedsRefresh: json.Number("-0")}, false},
		{"number small fraction", Metadata{MetaNeedsRefresh: json.Number("0.5")}, true},
		{"float64 nonzero", Metadata{MetaNeedsRefresh: 1.0}, true},
		{"float64 zero", Metadata{MetaNeedsRefresh: 0.0}, false},
		{"int nonzero", Metadata{MetaNeedsRefresh: 2}, true},
		{"null value", Metadata{MetaNeedsRefresh: nil}, false},
		{"object value", Metadata{MetaNeedsRefresh: map[string]any{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.NeedsRefresh())
		})
	}
}

func TestMetadataEncodeJSON(t *testing.T) {
	text, err := Metadata(nil).EncodeJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", text)

	text, err = Metadata{}.EncodeJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", text)

	text, err = Metadata{"query": "a<b"}.EncodeJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"query":"a<b"}`, text)
}

func TestMetadataRoundTrip(t *testing.T) {
	in := Metadata{
		"needsRefresh": true,
		"count":        json.Number("9007199254740993"), // beyond float64 precision
		"label":        "run 7",
	}

	text, err := in.EncodeJSON()
	require.NoError(t, err)

	out, err := UnmarshalMetadata(text)
	require.NoError(t, err)

	assert.Equal(t, true, out["needsRefresh"])
	assert.Equal(t, json.Number("9007199254740993"), out["count"])
	assert.Equal(t, "run 7", out["label"])
}

func TestUnmarshalMetadataEmpty(t *testing.T) {
	out, err := UnmarshalMetadata("")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out, err = UnmarshalMetadata("{}")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnmarshalMetadataInvalid(t *testing.T) {
	_, err := UnmarshalMetadata("{not json")
	assert.Error(t, err)
}
