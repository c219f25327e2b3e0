package extract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_EmbeddedInProse(t *testing.T) {
	e := New()

	got, err := e.Object(`Sure! {"name":"Grand Hall","address":"123 Main St","price":"$5,000","phone":"555-1234"}`)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":    "Grand Hall",
		"address": "123 Main St",
		"price":   "$5,000",
		"phone":   "555-1234",
	}, got)
}

func TestObject_NestedStructureNotTruncated(t *testing.T) {
	e := New()
	content := "Here is your plan:\n```json\n" +
		`{"catering":{"company":"Feast Co","address":"1 Elm"},"weddingLocations":[{"name":"A"},{"name":"B"}]}` +
		"\n```\nEnjoy your day!"

	got, err := e.Object(content)
	require.NoError(t, err)

	locations, ok := got["weddingLocations"].([]any)
	require.True(t, ok)
	assert.Len(t, locations, 2)
	assert.Equal(t, "Feast Co", got["catering"].(map[string]any)["company"])
}

func TestArray_PureJSONKeepsOrder(t *testing.T) {
	e := New()
	content := `[{"name":"A","address":"1","price":"$1"},{"name":"B","address":"2","price":"$2"},{"name":"C","address":"3","price":"$3"}]`

	got, err := e.Array(content)
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, name := range []string{"A", "B", "C"} {
		assert.Equal(t, name, got[i].(map[string]any)["name"])
	}
}

func TestArray_EmbeddedInProse(t *testing.T) {
	e := New()

	got, err := e.Array(`Options below. [{"name":"A"},{"name":"B"}] Let me know!`)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAny_LeftmostOpenerWins(t *testing.T) {
	e := New()

	arr, err := e.Any(`Result: [{"name":"A"}]`)
	require.NoError(t, err)
	assert.IsType(t, []any{}, arr)

	obj, err := e.Any(`Result: {"items":[1,2]}`)
	require.NoError(t, err)
	assert.IsType(t, map[string]any{}, obj)
}

func TestRaw_WhitespaceOnlyFallsBackToWholeString(t *testing.T) {
	e := New()

	raw, err := e.Raw("  \n\t{\"a\": 1}\n  ", ShapeObject)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
}

func TestRaw_Failures(t *testing.T) {
	e := New()

	tests := []struct {
		name    string
		content string
		shape   Shape
		empty   bool
	}{
		{"empty", "", ShapeObject, true},
		{"blank", "   \n ", ShapeAny, true},
		{"no brackets", "I could not find any venues near there.", ShapeObject, false},
		{"malformed object", `Here: {"name": "Grand Hall", "price": }`, ShapeObject, false},
		{"wrong shape", `{"name":"A"}`, ShapeArray, false},
		{"scalar", `42`, ShapeAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Raw(tt.content, tt.shape)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnparsableCompletion))
			assert.Equal(t, tt.empty, errors.Is(err, ErrEmptyCompletion))

			if !tt.empty {
				raw, ok := RawCompletion(err)
				require.True(t, ok)
				assert.Equal(t, tt.content, raw)
			}
		})
	}
}

func TestRaw_RepairIsOptIn(t *testing.T) {
	content := `Venue: {"name": "Grand Hall", "address": "123 Main St",}`

	_, err := New().Raw(content, ShapeObject)
	require.ErrorIs(t, err, ErrUnparsableCompletion)

	raw, err := New(WithRepair(true)).Raw(content, ShapeObject)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Grand Hall", got["name"])
}

func TestDecode_TypedDestination(t *testing.T) {
	type venue struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}

	var v venue
	err := New().Decode(`ok {"name":"Loft","price":"$900","extra":true}`, ShapeObject, &v)
	require.NoError(t, err)
	assert.Equal(t, venue{Name: "Loft", Price: "$900"}, v)
}

func TestTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"lead-in stripped", "Here are the tags: business, finance, quarterly-report", []string{"business", "finance", "quarterly-report"}},
		{"plain list", " ai ,  ml,, data ", []string{"ai", "ml", "data"}},
		{"duplicates kept", "go, go", []string{"go", "go"}},
		{"colon inside tag kept", "ratio 3:1, math", []string{"ratio 3:1", "math"}},
		{"empty", "  ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tags(tt.content))
		})
	}
}
