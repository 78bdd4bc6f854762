package agent

import (
	"encoding/json"
	"testing"

	"github.com/reagent-ai/reagent/pkg/toolregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInstructions(t *testing.T) {
	t.Run("renders tools with schema", func(t *testing.T) {
		registry, err := toolregistry.New([]toolregistry.Descriptor{
			{
				Name:        "echo",
				Description: "  Echoes text back.  ",
				InputSchema: json.RawMessage(`{"type": "object", "properties": {"text": {"type": "string"}}}`),
			},
		})
		require.NoError(t, err)

		instructions := BuildInstructions(registry)
		assert.Contains(t, instructions, "- echo: Echoes text back.\n  input_schema: {\"type\":\"object\",\"properties\":{\"text\":{\"type\":\"string\"}}}")
		assert.Contains(t, instructions, "Output format rules:")
		assert.Contains(t, instructions, `Action: {"tool":"<tool_name>","arguments":{...},"reason":"<one short sentence>"}`)
		assert.Contains(t, instructions, `Final: "<your answer>"`)
		assert.NotContains(t, instructions, "(no tools available)")
	})

	t.Run("empty registry renders placeholder", func(t *testing.T) {
		registry, err := toolregistry.New(nil)
		require.NoError(t, err)

		instructions := BuildInstructions(registry)
		assert.Contains(t, instructions, "- (no tools available)")
	})

	t.Run("tool without schema renders empty object", func(t *testing.T) {
		registry, err := toolregistry.New([]toolregistry.Descriptor{
			{Name: "daily_summary", Description: "Runs the daily summary."},
		})
		require.NoError(t, err)

		instructions := BuildInstructions(registry)
		assert.Contains(t, instructions, "- daily_summary: Runs the daily summary.\n  input_schema: {}")
	})
}

func TestMarshalCompact(t *testing.T) {
	assert.Equal(t, `"hi"`, marshalCompact("hi"))
	assert.Equal(t, `null`, marshalCompact(nil))
	assert.Equal(t, `["a",1]`, marshalCompact([]any{"a", float64(1)}))
	assert.Equal(t, `{"status":"ok"}`, marshalCompact(map[string]any{"status": "ok"}))

	// HTML characters must not be escaped in observations.
	assert.Equal(t, `"a <b> & c"`, marshalCompact("a <b> & c"))
}
