package toolserver

import (
	"context"
	"encoding/json"
)

// Handler executes one tool call. Arguments have already been validated
// against the tool's input schema when one is declared.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is one registered remote procedure: a name, a human description, a
// JSON schema for its arguments, and the handler that runs it. Dispatch is
// an exact name lookup in a static registry; tool names never resolve to
// anything but a registered handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}
