package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reagent-ai/reagent/pkg/toolregistry"
)

// protocolRules is the verbatim output contract appended to every
// instruction block. The two markers are bit-exact; the loop's parser
// accepts nothing else.
const protocolRules = "Output format rules:\n" +
	"1) If you need to use a tool, output exactly two lines:\n" +
	"   Action: {\"tool\":\"<tool_name>\",\"arguments\":{...},\"reason\":\"<one short sentence>\"}\n" +
	"   (no other text)\n" +
	"2) If you are done, output exactly one line:\n" +
	"   Final: \"<your answer>\"\n" +
	"3) Tool arguments must be valid JSON. Use only the tools listed.\n" +
	"4) Never include hidden reasoning or multi-paragraph thoughts. Keep 'reason' to one sentence.\n"

// BuildInstructions renders the frozen tool registry and protocol rules into
// the developer instruction the model sees. Computed once per run; the
// registry cannot change mid-run.
func BuildInstructions(registry *toolregistry.Registry) string {
	toolLines := []string{}
	for _, t := range registry.Descriptors() {
		schemaJSON := compactJSON(t.InputSchema)
		desc := strings.TrimSpace(t.Description)
		toolLines = append(toolLines, fmt.Sprintf("- %s: %s\n  input_schema: %s", t.Name, desc, schemaJSON))
	}

	toolsBlock := "- (no tools available)"
	if len(toolLines) > 0 {
		toolsBlock = strings.Join(toolLines, "\n")
	}

	return "You are a CLI automation agent that can use MCP tools to execute real actions.\n" +
		"You must follow a strict ReAct-style loop: decide whether a tool call is needed, " +
		"then either call exactly one tool or produce the final answer.\n\n" +
		"Available tools:\n" +
		toolsBlock + "\n\n" +
		protocolRules
}

// compactJSON compacts a raw schema for single-line rendering. An absent
// schema renders as an empty object.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// marshalCompact serializes a normalized tool result for the next
// observation. HTML escaping is disabled so the model sees the server's
// payload verbatim.
func marshalCompact(value any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprintf("%v", value)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
