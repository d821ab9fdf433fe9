package model

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "null"},
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", -100, "-100"},
		{"zero", 0, "0"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"min int64", int64(-9223372036854775808), "-9223372036854775808"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"json.Number verbatim", json.Number("123456789012345678"), "123456789012345678"},
		{"integral float64", float64(7), "7"},
		{"fractional float64", 2.5, "2.5"},
		{"small float64 stays decimal", 0.00001, "0.00001"},
		{"large float64 goes exponential", 1e21, "1e+21"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []any{1, 2, 3}, "[1,2,3]"},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
		{"metadata object", Metadata{"a": true}, `{"a":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  3,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{
			"b": 1,
			"a": 2,
		},
		"a": 3,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8 byte order.
	obj := map[string]any{
		"": 1, // UTF-16: 0xE000
		"𐀀":      2, // UTF-16: 0xD800, 0xDC00 (surrogate pair)
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	// UTF-16 order: 0xD800 < 0xE000, so the supplementary-plane key sorts first.
	expected := `{"𐀀":2,"` + "" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical("<script>&</script>")
	require.NoError(t, err)
	assert.Equal(t, `"<script>&</script>"`, string(result))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// e + combining acute (NFD) must normalize to the precomposed form.
	decomposed := "é"
	precomposed := "é"

	r1, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	r2, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(r2), string(r1))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	// U+2028 and U+2029 must appear literally, not as \u202x escapes.
	result, err := MarshalCanonical("a b c")
	require.NoError(t, err)
	assert.Equal(t, "\"a b c\"", string(result))

	// A literal backslash followed by the text "u2028" must stay escaped.
	result, err = MarshalCanonical(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalFloatSurvivesJSONRoundTrip(t *testing.T) {
	// Hash inputs built from float64 must equal hash inputs rebuilt from the
	// stored JSON, where the same value arrives as json.Number.
	for _, f := range []float64{0.00001, 2.5, 7, 1e21, -0.000123, 3.1415926535} {
		direct, err := MarshalCanonical(map[string]any{"v": f})
		require.NoError(t, err)

		stored, err := json.Marshal(map[string]any{"v": f})
		require.NoError(t, err)
		dec := json.NewDecoder(bytes.NewReader(stored))
		dec.UseNumber()
		var decoded map[string]any
		require.NoError(t, dec.Decode(&decoded))

		rebuilt, err := MarshalCanonical(decoded)
		require.NoError(t, err)
		assert.Equal(t, string(direct), string(rebuilt), "float %v", f)
	}
}

func TestMarshalCanonicalDeterminism(t *testing.T) {
	obj := map[string]any{
		"name": "Figure 1",
		"tags": []any{"exp-12", "draft"},
		"meta": map[string]any{"rev": json.Number("3")},
	}

	r1, err := MarshalCanonical(obj)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		r2, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(r1), string(r2))
	}
}

func TestMarshalCanonicalUnsupportedType(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
