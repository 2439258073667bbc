package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestRecords_AcceptedEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		matchers []Matcher
		want     string
	}{
		{"device bare", `[{"id":1},{"id":2}]`, DeviceList, "array"},
		{"device data", `{"data":[{"id":1},{"id":2}]}`, DeviceList, "data"},
		{"device devices", `{"devices":[{"id":1},{"id":2}]}`, DeviceList, "devices"},
		{"sensor bare", `[{"id":1},{"id":2}]`, SensorList, "array"},
		{"sensor data", `{"data":[{"id":1},{"id":2}]}`, SensorList, "data"},
		{"history items", `{"items":[{"id":1},{"id":2}],"total":2}`, DeviceHistory, "items"},
		{"history bare", `[{"id":1},{"id":2}]`, DeviceHistory, "array"},
		{"voice items", `{"items":[{"id":1},{"id":2}]}`, VoiceHistory, "items"},
		{"voice data.items", `{"data":{"items":[{"id":1},{"id":2}]}}`, VoiceHistory, "data.items"},
		{"voice bare", `[{"id":1},{"id":2}]`, VoiceHistory, "array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := decode(t, tt.raw)
			got := Records(payload, tt.matchers)
			require.Len(t, got, 2)
			assert.Equal(t, float64(1), got[0].(map[string]any)["id"])
			assert.Equal(t, float64(2), got[1].(map[string]any)["id"])

			name, ok := Match(payload, tt.matchers)
			require.True(t, ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestRecords_PriorityOrder(t *testing.T) {
	payload := decode(t, `{"data":[{"id":"d"}],"devices":[{"id":"x"}]}`)
	got := Records(payload, DeviceList)
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].(map[string]any)["id"])

	voice := decode(t, `{"items":[{"id":"top"}],"data":{"items":[{"id":"nested"}]}}`)
	got = Records(voice, VoiceHistory)
	require.Len(t, got, 1)
	assert.Equal(t, "top", got[0].(map[string]any)["id"])
}

func TestRecords_UnrecognizedShapesAreEmpty(t *testing.T) {
	payloads := []any{
		nil,
		"hello",
		float64(42),
		true,
		map[string]any{},
		map[string]any{"data": "not a list"},
		map[string]any{"devices": map[string]any{"id": 1}},
		map[string]any{"items": nil},
	}
	for _, p := range payloads {
		for _, matchers := range [][]Matcher{DeviceList, SensorList, DeviceHistory, VoiceHistory} {
			assert.NotPanics(t, func() {
				got := Records(p, matchers)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			})
		}
	}
	_, ok := Match(nil, DeviceList)
	assert.False(t, ok)
}

func TestRecords_DoesNotAliasInput(t *testing.T) {
	inner := []any{"a", "b"}
	payload := map[string]any{"data": inner}

	got := Records(payload, SensorList)
	got[0] = "changed"

	assert.Equal(t, "a", inner[0])
}

func TestRecords_SkipsIncompleteMatchers(t *testing.T) {
	broken := Matcher{Name: "broken"}
	got := Records([]any{1}, []Matcher{broken, Bare()})
	assert.Equal(t, []any{1}, got)

	halfBroken := Matcher{Name: "no-extract", Test: func(any) bool { return true }}
	name, ok := Match([]any{1}, []Matcher{halfBroken, Bare()})
	assert.True(t, ok)
	assert.Equal(t, "array", name)
}

func TestInt(t *testing.T) {
	payload := decode(t, `{"total":21,"total_pages":"3","bad":1.5,"data":{"total":4}}`)

	n, ok := Int(payload, "total")
	assert.True(t, ok)
	assert.Equal(t, 21, n)

	n, ok = Int(payload, "total_pages")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = Int(payload, "data", "total")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = Int(payload, "bad")
	assert.False(t, ok)
	_, ok = Int(payload, "missing")
	assert.False(t, ok)
	_, ok = Int([]any{}, "total")
	assert.False(t, ok)

	n, ok = Int(json.Number("7"))
	assert.True(t, ok)
	assert.Equal(t, 7, n)
}
