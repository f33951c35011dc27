package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFirstJSONObject(t *testing.T) {
	fragment, ok := ExtractFirstJSON(`Sure! Here you go: {"recipes": []} hope that helps`)
	require.True(t, ok)
	assert.Equal(t, `{"recipes": []}`, fragment)
}

func TestExtractFirstJSONArray(t *testing.T) {
	fragment, ok := ExtractFirstJSON(`[{"name": "Milk", "price": 3.99}]`)
	require.True(t, ok)
	assert.Equal(t, `[{"name": "Milk", "price": 3.99}]`, fragment)
}

func TestExtractFirstJSONNested(t *testing.T) {
	text := `prefix {"a": {"b": [1, 2, {"c": 3}]}} suffix`
	fragment, ok := ExtractFirstJSON(text)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": [1, 2, {"c": 3}]}}`, fragment)
}

func TestExtractFirstJSONIgnoresBracesInStrings(t *testing.T) {
	text := `{"note": "use } and { carefully", "ok": true}`
	fragment, ok := ExtractFirstJSON(text)
	require.True(t, ok)
	assert.Equal(t, text, fragment)
}

func TestExtractFirstJSONHandlesEscapedQuotes(t *testing.T) {
	text := `{"say": "he said \"hi\" to me"}`
	fragment, ok := ExtractFirstJSON(text)
	require.True(t, ok)
	assert.Equal(t, text, fragment)
}

func TestExtractFirstJSONUnbalanced(t *testing.T) {
	_, ok := ExtractFirstJSON(`{"recipes": [`)
	assert.False(t, ok)
}

func TestExtractFirstJSONNoJSON(t *testing.T) {
	_, ok := ExtractFirstJSON("just some plain text")
	assert.False(t, ok)

	_, ok = ExtractFirstJSON("")
	assert.False(t, ok)
}

func TestExtractFirstJSONTakesFirstFragment(t *testing.T) {
	fragment, ok := ExtractFirstJSON(`{"first": 1} {"second": 2}`)
	require.True(t, ok)
	assert.Equal(t, `{"first": 1}`, fragment)
}

func TestQuoteJSONKeysRepairsUnquotedKeys(t *testing.T) {
	repaired := QuoteJSONKeys(`{recipes: [{name: "Omelette", cooking_time_minutes: 15}]}`)
	assert.Equal(t, `{"recipes": [{"name": "Omelette", "cooking_time_minutes": 15}]}`, repaired)
}

func TestQuoteJSONKeysLeavesQuotedKeysAlone(t *testing.T) {
	text := `{"name": "Milk", "price": 3.99}`
	assert.Equal(t, text, QuoteJSONKeys(text))
}
