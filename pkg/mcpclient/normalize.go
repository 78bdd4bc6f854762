package mcpclient

import (
	"encoding/json"
	"fmt"
)

// contentPart is one typed part of an MCP tool result. The kind set is closed
// over {text, json}; anything else flows through as an unknown kind rather
// than being dropped.
type contentPart struct {
	Type string          `json:"type"`
	Text string          `json:"text,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// normalizeResult turns a raw tools/call result into a single canonical
// JSON-like value:
//   - absent result -> nil
//   - result without decomposable content -> the decoded value unchanged
//   - otherwise each content part contributes, in server order: text parts
//     their literal string, json parts their decoded value, any other kind a
//     placeholder carrying the kind tag
//   - exactly one contribution is returned unwrapped; two or more as a slice
func normalizeResult(raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		// Not an object at all; hand the decoded value back unchanged.
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("undecodable tool result: %w", err)
		}
		return value, nil
	}

	rawContent, ok := probe["content"]
	if !ok {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("undecodable tool result: %w", err)
		}
		return value, nil
	}

	var parts []contentPart
	if len(rawContent) > 0 && string(rawContent) != "null" {
		if err := json.Unmarshal(rawContent, &parts); err != nil {
			return nil, fmt.Errorf("malformed tool result content: %w", err)
		}
	}

	if len(parts) == 0 {
		return nil, nil
	}

	normalized := make([]any, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case "text":
			normalized = append(normalized, part.Text)
		case "json":
			var data any
			if len(part.Data) > 0 {
				if err := json.Unmarshal(part.Data, &data); err != nil {
					return nil, fmt.Errorf("malformed json content part: %w", err)
				}
			}
			normalized = append(normalized, data)
		default:
			normalized = append(normalized, map[string]any{"type": part.Type})
		}
	}

	if len(normalized) == 1 {
		return normalized[0], nil
	}
	return normalized, nil
}
