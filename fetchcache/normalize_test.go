package fetchcache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EnvelopeShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ids  []string
	}{
		{
			name: "top-level array",
			raw:  `[{"id":"a"},{"id":"b"}]`,
			ids:  []string{"a", "b"},
		},
		{
			name: "data array",
			raw:  `{"success":true,"data":[{"id":"a"}]}`,
			ids:  []string{"a"},
		},
		{
			name: "data.items",
			raw:  `{"data":{"items":[{"id":"a"}],"page":3}}`,
			ids:  []string{"a"},
		},
		{
			name: "data.data",
			raw:  `{"data":{"data":[{"id":"a"}]}}`,
			ids:  []string{"a"},
		},
		{
			name: "results array",
			raw:  `{"results":[{"id":"a"}]}`,
			ids:  []string{"a"},
		},
		{
			name: "top-level array beats results",
			raw:  `[{"id":"top"}]`,
			ids:  []string{"top"},
		},
		{
			name: "data array beats results",
			raw:  `{"data":[{"id":"d"}],"results":[{"id":"r"}]}`,
			ids:  []string{"d"},
		},
		{
			name: "data.items beats data.data",
			raw:  `{"data":{"items":[{"id":"i"}],"data":[{"id":"d"}]}}`,
			ids:  []string{"i"},
		},
		{
			name: "data object without arrays falls through to results",
			raw:  `{"data":{"count":2},"results":[{"id":"r"}]}`,
			ids:  []string{"r"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize([]byte(tt.raw), NormalizeOptions{})
			require.Len(t, result.Items, len(tt.ids))
			for i, id := range tt.ids {
				assert.Equal(t, id, result.Items[i].ID)
			}
		})
	}
}

func TestNormalize_UnknownShapeIsEmptyNotError(t *testing.T) {
	for _, raw := range []string{
		`{"unexpected":true}`,
		`{"data":"a string"}`,
		`"just a string"`,
		`42`,
		`not json at all`,
		``,
		`null`,
	} {
		result := Normalize([]byte(raw), NormalizeOptions{Page: 1})
		require.NotNil(t, result, "raw=%q", raw)
		assert.Empty(t, result.Items, "raw=%q", raw)
		assert.Equal(t, 1, result.Page)
	}
}

func TestNormalize_PagePriority(t *testing.T) {
	t.Run("pagination.page wins", func(t *testing.T) {
		raw := `{"data":{"items":[],"page":2,"pagination":{"page":5,"total":60}}}`
		result := Normalize([]byte(raw), NormalizeOptions{Page: 1})
		assert.Equal(t, 5, result.Page)
		assert.Equal(t, 60, result.Total)
	})

	t.Run("data.page next", func(t *testing.T) {
		raw := `{"data":{"items":[],"page":2}}`
		result := Normalize([]byte(raw), NormalizeOptions{Page: 1})
		assert.Equal(t, 2, result.Page)
	})

	t.Run("requested page last", func(t *testing.T) {
		raw := `{"data":[]}`
		result := Normalize([]byte(raw), NormalizeOptions{Page: 4})
		assert.Equal(t, 4, result.Page)
	})
}

func TestNormalize_SortsByUpdatedFallingBackToCreated(t *testing.T) {
	// x was created later but y was touched more recently: y first.
	raw := `[
		{"id":"x","created_at":"2024-03-01","updated_at":null},
		{"id":"y","created_at":"2024-01-01","updated_at":"2024-06-01"}
	]`
	result := Normalize([]byte(raw), NormalizeOptions{})

	require.Len(t, result.Items, 2)
	assert.Equal(t, "y", result.Items[0].ID)
	assert.Equal(t, "x", result.Items[1].ID)
}

func TestNormalize_RelevanceSortsByCreatedOnly(t *testing.T) {
	raw := `[
		{"id":"x","created_at":"2024-03-01"},
		{"id":"y","created_at":"2024-01-01","updated_at":"2024-06-01"}
	]`
	result := Normalize([]byte(raw), NormalizeOptions{Relevance: true})

	require.Len(t, result.Items, 2)
	assert.Equal(t, "x", result.Items[0].ID, "relevance ranking ignores updated_at")
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := `{"data":{"items":[
		{"id":"a","created_at":"2024-02-02T10:00:00Z"},
		{"id":"b","created_at":"2024-05-05T10:00:00Z"}
	],"pagination":{"page":2,"total":14}}}`

	first := Normalize([]byte(raw), NormalizeOptions{Page: 2})

	// A normalized result marshaled back is a top-level object with items;
	// re-normalizing its item array must not change anything.
	items, err := json.Marshal(first.Items)
	require.NoError(t, err)
	second := Normalize(items, NormalizeOptions{Page: first.Page})

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Page, second.Page)
}

func TestTimestamp_LenientParsing(t *testing.T) {
	tests := []struct {
		raw  string
		zero bool
	}{
		{`"2024-01-02T15:04:05Z"`, false},
		{`"2024-01-02T15:04:05.123Z"`, false},
		{`"2024-01-02 15:04:05"`, false},
		{`"2024-01-02"`, false},
		{`1704207845`, false},
		{`null`, true},
		{`"garbage"`, true},
		{`""`, true},
	}
	for _, tt := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts), "raw=%s", tt.raw)
		assert.Equal(t, tt.zero, ts.IsZero(), "raw=%s", tt.raw)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	raw := []byte(`[{"id":"b","created_at":"2024-01-01"},{"id":"a","created_at":"2024-06-01"}]`)
	before := string(raw)

	Normalize(raw, NormalizeOptions{})

	assert.Equal(t, before, string(raw))
}
