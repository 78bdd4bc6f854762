package mcpclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResult(t *testing.T) {
	t.Run("absent result yields nil", func(t *testing.T) {
		value, err := normalizeResult(nil)
		require.NoError(t, err)
		assert.Nil(t, value)

		value, err = normalizeResult(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("single text part is returned verbatim unwrapped", func(t *testing.T) {
		value, err := normalizeResult(json.RawMessage(`{"content":[{"type":"text","text":"hi"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "hi", value)
	})

	t.Run("single json part is decoded", func(t *testing.T) {
		value, err := normalizeResult(json.RawMessage(`{"content":[{"type":"json","data":{"status":"ok"}}]}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"status": "ok"}, value)
	})

	t.Run("zero parts yields nil", func(t *testing.T) {
		value, err := normalizeResult(json.RawMessage(`{"content":[]}`))
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("multiple parts preserve server order", func(t *testing.T) {
		raw := json.RawMessage(`{"content":[
			{"type":"text","text":"first"},
			{"type":"json","data":[1,2]},
			{"type":"image","data":"aaaa"}
		]}`)
		value, err := normalizeResult(raw)
		require.NoError(t, err)

		list, ok := value.([]any)
		require.True(t, ok)
		require.Len(t, list, 3)
		assert.Equal(t, "first", list[0])
		assert.Equal(t, []any{float64(1), float64(2)}, list[1])
		// Unknown kinds contribute a placeholder carrying the kind tag.
		assert.Equal(t, map[string]any{"type": "image"}, list[2])
	})

	t.Run("result without content passes through unchanged", func(t *testing.T) {
		value, err := normalizeResult(json.RawMessage(`{"status":"ok","count":2}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"status": "ok", "count": float64(2)}, value)
	})

	t.Run("non-object result passes through unchanged", func(t *testing.T) {
		value, err := normalizeResult(json.RawMessage(`[1,"two"]`))
		require.NoError(t, err)
		assert.Equal(t, []any{float64(1), "two"}, value)

		value, err = normalizeResult(json.RawMessage(`"plain"`))
		require.NoError(t, err)
		assert.Equal(t, "plain", value)
	})

	t.Run("null content yields nil", func(t *testing.T) {
		value, err := normalizeResult(json.RawMessage(`{"content":null}`))
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("malformed content errors", func(t *testing.T) {
		_, err := normalizeResult(json.RawMessage(`{"content":"not a list"}`))
		assert.Error(t, err)
	})
}
