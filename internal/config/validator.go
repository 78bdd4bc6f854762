package config

import "fmt"

var supportedProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
}

// Validate checks a loaded configuration for values the agent cannot run
// with. The MCP command may be empty here; the run command requires it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if !supportedProviders[cfg.Provider] {
		return fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if cfg.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if cfg.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1")
	}
	if cfg.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative")
	}
	return nil
}
