package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	actionMarker = "Action:"
	finalMarker  = "Final:"
)

// Parser errors. Parsing is intentionally strict so the agent does not drift
// into free text the loop cannot act on.
var (
	// ErrEmptyOutput reports model output that is empty after trimming.
	ErrEmptyOutput = errors.New("empty model output")
	// ErrFormat reports output that begins with neither recognized marker.
	ErrFormat = errors.New("model output must start with 'Action:' or 'Final:'")
	// ErrActionParse reports an Action payload that is not a valid action object.
	ErrActionParse = errors.New("invalid action")
)

// ParseModelOutput classifies one raw model message as either a final answer
// or a tool invocation. It is a pure function: no side effects, no I/O, and no
// partial results on failure.
func ParseModelOutput(text string) (*ParsedOutput, error) {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return nil, ErrEmptyOutput
	}

	if strings.HasPrefix(stripped, finalMarker) {
		final := strings.TrimSpace(stripped[len(finalMarker):])
		if len(final) >= 2 && strings.HasPrefix(final, `"`) && strings.HasSuffix(final, `"`) {
			final = final[1 : len(final)-1]
		}
		return &ParsedOutput{Kind: KindFinal, Final: final}, nil
	}

	if strings.HasPrefix(stripped, actionMarker) {
		payload := strings.TrimSpace(stripped[len(actionMarker):])

		var decoded map[string]json.RawMessage
		if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
			return nil, fmt.Errorf("%w: action JSON was invalid: %v", ErrActionParse, err)
		}

		action := Action{Arguments: map[string]any{}}

		rawTool, ok := decoded["tool"]
		if !ok {
			return nil, fmt.Errorf("%w: action.tool must be a non-empty string", ErrActionParse)
		}
		if err := json.Unmarshal(rawTool, &action.Tool); err != nil || action.Tool == "" {
			return nil, fmt.Errorf("%w: action.tool must be a non-empty string", ErrActionParse)
		}

		if rawArgs, ok := decoded["arguments"]; ok {
			if err := json.Unmarshal(rawArgs, &action.Arguments); err != nil || action.Arguments == nil {
				return nil, fmt.Errorf("%w: action.arguments must be an object", ErrActionParse)
			}
		}

		if rawReason, ok := decoded["reason"]; ok {
			// Best effort; the reason is for observability only.
			_ = json.Unmarshal(rawReason, &action.Reason)
		}

		return &ParsedOutput{Kind: KindAction, Action: &action}, nil
	}

	return nil, ErrFormat
}
