package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurface_UnmarshalScalars(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"null", `null`, KindNull},
		{"string", `"hello"`, KindString},
		{"integer", `42`, KindNumber},
		{"float", `1.5`, KindNumber},
		{"bool", `true`, KindBool},
		{"list", `[1, 2]`, KindList},
		{"object", `{"a": 1}`, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Surface
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &s))
			assert.Equal(t, tt.kind, s.Kind())
		})
	}
}

func TestSurface_ObjectOrderPreserved(t *testing.T) {
	var s Surface
	require.NoError(t, json.Unmarshal([]byte(`{"zebra": 1, "apple": 2, "mango": 3}`), &s))

	members, ok := s.Members()
	require.True(t, ok)
	require.Len(t, members, 3)
	assert.Equal(t, "zebra", members[0].Key)
	assert.Equal(t, "apple", members[1].Key)
	assert.Equal(t, "mango", members[2].Key)
}

func TestSurface_MarshalRoundTrip(t *testing.T) {
	raw := `{"b":1,"a":[true,null,"x"],"c":{"y":-1}}`
	var s Surface
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestSurface_Int(t *testing.T) {
	tests := []struct {
		name     string
		value    Surface
		expected int64
		ok       bool
	}{
		{"integer", NewInt(7), 7, true},
		{"negative", NewInt(-1), -1, true},
		{"float", NewFloat(1.5), 0, false},
		{"string", NewString("7"), 0, false},
		{"null", Null(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Int()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestSurface_GoValue(t *testing.T) {
	var s Surface
	require.NoError(t, json.Unmarshal([]byte(`{"a": [1, 2.5, "x", false, null]}`), &s))

	value, ok := s.Member("a")
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), 2.5, "x", false, nil}, value.GoValue())
}

func TestFromValue(t *testing.T) {
	s, err := FromValue(map[string]any{"b": 1, "a": []any{"x", 2}})
	require.NoError(t, err)

	members, ok := s.Members()
	require.True(t, ok)
	require.Len(t, members, 2)
	// Map keys are sorted for determinism.
	assert.Equal(t, "a", members[0].Key)
	assert.Equal(t, "b", members[1].Key)

	_, err = FromValue(struct{}{})
	assert.Error(t, err)
}
