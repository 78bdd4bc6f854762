package agent

// Turn is one entry of the model's working memory. The ordered turn sequence
// is append-only for the lifetime of a run.
type Turn struct {
	Role    string `json:"role"` // developer, user, assistant
	Content string `json:"content"`
}

// Action is a parsed tool invocation request from the model. The parser does
// not check that Tool exists in the registry; that is the loop's job at
// dispatch time.
type Action struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Reason    string         `json:"reason,omitempty"`
}

// OutputKind classifies parsed model output.
type OutputKind string

const (
	// KindAction means the model requested a tool invocation.
	KindAction OutputKind = "action"
	// KindFinal means the model produced its final answer.
	KindFinal OutputKind = "final"
)

// ParsedOutput is the result of classifying one raw model message.
type ParsedOutput struct {
	Kind   OutputKind
	Final  string
	Action *Action
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
