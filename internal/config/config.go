package config

// Config represents the main reagent configuration
type Config struct {
	// LLM provider: openai or anthropic
	Provider string `json:"provider" mapstructure:"provider"`

	// Model identifier passed to the provider
	Model string `json:"model" mapstructure:"model"`

	// Maximum reason-act-observe iterations per run
	MaxSteps int `json:"max_steps" mapstructure:"max_steps"`

	// Maximum completion tokens per model call (0 = provider default)
	MaxTokens int `json:"max_tokens" mapstructure:"max_tokens"`

	// MCP tool server configuration
	MCP MCPConfig `json:"mcp" mapstructure:"mcp"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// MCPConfig identifies the tool server subprocess
type MCPConfig struct {
	Command string   `json:"command" mapstructure:"command"`
	Args    []string `json:"args" mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		Model:    "gpt-4o",
		MaxSteps: 8,
		Logging: LoggingConfig{
			Level:     "info",
			Redaction: true,
		},
	}
}
