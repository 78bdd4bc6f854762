package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelOutputFinal(t *testing.T) {
	t.Run("quoted final answer strips wrapping quotes", func(t *testing.T) {
		parsed, err := ParseModelOutput(`Final: "all done"`)
		require.NoError(t, err)
		assert.Equal(t, KindFinal, parsed.Kind)
		assert.Equal(t, "all done", parsed.Final)
	})

	t.Run("unquoted final answer is returned unchanged", func(t *testing.T) {
		parsed, err := ParseModelOutput("Final: all done")
		require.NoError(t, err)
		assert.Equal(t, "all done", parsed.Final)
	})

	t.Run("inner quotes survive", func(t *testing.T) {
		parsed, err := ParseModelOutput(`Final: "he said "hi""`)
		require.NoError(t, err)
		assert.Equal(t, `he said "hi"`, parsed.Final)
	})

	t.Run("single stray quote is not stripped", func(t *testing.T) {
		parsed, err := ParseModelOutput(`Final: "`)
		require.NoError(t, err)
		assert.Equal(t, `"`, parsed.Final)
	})

	t.Run("empty final is allowed", func(t *testing.T) {
		parsed, err := ParseModelOutput(`Final: ""`)
		require.NoError(t, err)
		assert.Equal(t, "", parsed.Final)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		parsed, err := ParseModelOutput("  \n Final: \"done\" \n")
		require.NoError(t, err)
		assert.Equal(t, "done", parsed.Final)
	})
}

func TestParseModelOutputAction(t *testing.T) {
	t.Run("full action", func(t *testing.T) {
		parsed, err := ParseModelOutput(`Action: {"tool":"echo","arguments":{"text":"hi"},"reason":"need to echo"}`)
		require.NoError(t, err)
		assert.Equal(t, KindAction, parsed.Kind)
		require.NotNil(t, parsed.Action)
		assert.Equal(t, "echo", parsed.Action.Tool)
		assert.Equal(t, map[string]any{"text": "hi"}, parsed.Action.Arguments)
		assert.Equal(t, "need to echo", parsed.Action.Reason)
	})

	t.Run("missing arguments defaults to empty map", func(t *testing.T) {
		parsed, err := ParseModelOutput(`Action: {"tool":"daily_summary"}`)
		require.NoError(t, err)
		require.NotNil(t, parsed.Action)
		assert.Equal(t, map[string]any{}, parsed.Action.Arguments)
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		_, err := ParseModelOutput(`Action: {"tool": "echo"`)
		assert.ErrorIs(t, err, ErrActionParse)
	})

	t.Run("non-object payload fails", func(t *testing.T) {
		_, err := ParseModelOutput(`Action: ["echo"]`)
		assert.ErrorIs(t, err, ErrActionParse)
	})

	t.Run("missing tool fails", func(t *testing.T) {
		_, err := ParseModelOutput(`Action: {"arguments":{}}`)
		assert.ErrorIs(t, err, ErrActionParse)
	})

	t.Run("empty tool fails", func(t *testing.T) {
		_, err := ParseModelOutput(`Action: {"tool":""}`)
		assert.ErrorIs(t, err, ErrActionParse)
	})

	t.Run("non-string tool fails", func(t *testing.T) {
		_, err := ParseModelOutput(`Action: {"tool":42}`)
		assert.ErrorIs(t, err, ErrActionParse)
	})

	t.Run("non-object arguments fails", func(t *testing.T) {
		_, err := ParseModelOutput(`Action: {"tool":"echo","arguments":[1,2]}`)
		assert.ErrorIs(t, err, ErrActionParse)
	})
}

func TestParseModelOutputRejections(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := ParseModelOutput("")
		assert.ErrorIs(t, err, ErrEmptyOutput)
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := ParseModelOutput("  \n\t ")
		assert.ErrorIs(t, err, ErrEmptyOutput)
	})

	t.Run("no marker", func(t *testing.T) {
		_, err := ParseModelOutput("I think I should use the echo tool.")
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("marker not at start", func(t *testing.T) {
		_, err := ParseModelOutput("Sure! Final: \"done\"")
		assert.ErrorIs(t, err, ErrFormat)
	})
}
