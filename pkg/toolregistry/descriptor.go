package toolregistry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Descriptor describes a single remote tool: its name, human description, and
// the JSON schema of its accepted arguments. Descriptors are immutable once the
// registry is built.
type Descriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage

	schema *gojsonschema.Schema
}

// ArgumentValidationError reports arguments that do not satisfy the tool's
// declared input schema.
type ArgumentValidationError struct {
	Tool   string
	Detail string
}

func (e *ArgumentValidationError) Error() string {
	return fmt.Sprintf("arguments for tool '%s' do not match its input schema: %s", e.Tool, e.Detail)
}

// Kind returns the error kind name used in corrective prompts.
func (e *ArgumentValidationError) Kind() string {
	return "ArgumentValidationError"
}

// ValidateArguments checks a proposed argument map against the descriptor's
// input schema. Descriptors without a usable schema accept any arguments.
func (d *Descriptor) ValidateArguments(args map[string]any) error {
	if d.schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := d.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return &ArgumentValidationError{Tool: d.Name, Detail: err.Error()}
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		details = append(details, resultErr.String())
	}
	return &ArgumentValidationError{Tool: d.Name, Detail: strings.Join(details, "; ")}
}
