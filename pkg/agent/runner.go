package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reagent-ai/reagent/internal/observability"
	"github.com/reagent-ai/reagent/pkg/toolregistry"
	"github.com/rs/zerolog"
)

// MaxStepsMessage is the sentinel returned when the step budget runs out
// before the model produces a final answer. Budget exhaustion is a normal
// termination path, not an error.
const MaxStepsMessage = "Reached max_steps without a Final answer."

// DefaultMaxSteps bounds a run when no explicit budget is configured.
const DefaultMaxSteps = 8

// ToolInvoker executes one remote tool call. Implemented by mcpclient.Client;
// the loop never holds more than one invocation in flight.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, arguments map[string]any) (any, error)
}

// Runner drives the reason-act-observe loop: think, parse, then dispatch a
// tool call or finalize, feeding each observation back into the history.
type Runner struct {
	provider LLMProvider
	invoker  ToolInvoker
	registry *toolregistry.Registry
	logger   zerolog.Logger

	model        string
	maxSteps     int
	maxTokens    int
	instructions string
}

// Config holds runner configuration
type Config struct {
	Provider  LLMProvider
	Invoker   ToolInvoker
	Registry  *toolregistry.Registry
	Logger    zerolog.Logger
	Model     string
	MaxSteps  int
	MaxTokens int
}

// NewRunner creates a new agent runner. The registry is frozen here: the
// instructions are rendered once and reference only tools known at this
// moment.
func NewRunner(cfg Config) (*Runner, error) {
	observability.EnsureRegistered()

	if cfg.Provider == nil {
		return nil, fmt.Errorf("llm provider is required")
	}
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("tool invoker is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps cannot be negative")
	}

	maxSteps := cfg.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	return &Runner{
		provider:     cfg.Provider,
		invoker:      cfg.Invoker,
		registry:     cfg.Registry,
		logger:       cfg.Logger,
		model:        cfg.Model,
		maxSteps:     maxSteps,
		maxTokens:    cfg.MaxTokens,
		instructions: BuildInstructions(cfg.Registry),
	}, nil
}

// Instructions returns the frozen developer instruction block.
func (r *Runner) Instructions() string {
	return r.instructions
}

// Run executes the loop for one prompt and returns either the model's final
// answer or the budget-exhaustion sentinel. Model API failures and context
// cancellation are fatal; unknown tools, invocation failures, and malformed
// model output are recovered in-loop via corrective prompts.
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	history := []Turn{}
	userInput := prompt

	for step := 1; step <= r.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			observability.RecordAgentRun("aborted", time.Since(start))
			return "", err
		}

		modelText, err := r.complete(ctx, history, userInput)
		if err != nil {
			observability.RecordAgentRun("error", time.Since(start))
			return "", fmt.Errorf("model call failed: %w", err)
		}

		parsed, err := ParseModelOutput(modelText)
		if err != nil {
			// Malformed output is re-prompted like an unknown tool rather
			// than crashing the run; the step is still consumed.
			observability.RecordParseFailure(errorKind(err))
			logger.Warn().Int("step", step).Err(err).Msg("Model output failed to parse")
			history = append(history, Turn{Role: "assistant", Content: modelText})
			userInput = fmt.Sprintf(
				"Your previous output could not be parsed (%s: %v).\nRespond using the required format.",
				errorKind(err), err,
			)
			continue
		}

		if parsed.Kind == KindFinal {
			logger.Info().Int("step", step).Msg("Final answer produced")
			observability.RecordAgentRun("final", time.Since(start))
			return parsed.Final, nil
		}

		action := parsed.Action
		logger.Info().
			Int("step", step).
			Str("tool", action.Tool).
			Str("reason", action.Reason).
			Msg("Model requested tool call")

		descriptor, known := r.registry.Lookup(action.Tool)
		if !known {
			observability.RecordCorrection("unknown_tool")
			history = append(history, Turn{Role: "assistant", Content: modelText})
			userInput = fmt.Sprintf(
				"Tool '%s' is not available. Choose one of: %s.\nRespond using the required format.",
				action.Tool, strings.Join(r.registry.Names(), ", "),
			)
			continue
		}

		if err := descriptor.ValidateArguments(action.Arguments); err != nil {
			// Schema mismatch is caught before the call ever reaches the
			// server; same corrective shape as an invocation failure.
			observability.RecordCorrection("invalid_arguments")
			history = append(history, Turn{Role: "assistant", Content: modelText})
			userInput = failureMessage(action.Tool, err)
			continue
		}

		invokeStart := time.Now()
		result, err := r.invoker.Invoke(ctx, action.Tool, action.Arguments)
		observability.RecordToolInvocation(action.Tool, time.Since(invokeStart), err == nil)
		if err != nil {
			logger.Warn().Str("tool", action.Tool).Err(err).Msg("Tool invocation failed")
			history = append(history, Turn{Role: "assistant", Content: modelText})
			userInput = failureMessage(action.Tool, err)
			continue
		}

		history = append(history, Turn{Role: "assistant", Content: modelText})
		observation := marshalCompact(result)
		userInput = fmt.Sprintf(
			"Observation from tool '%s': %s\nIf another tool call is needed, do it now. Otherwise produce Final.",
			action.Tool, observation,
		)
	}

	logger.Info().Int("max_steps", r.maxSteps).Msg("Step budget exhausted")
	observability.RecordAgentRun("exhausted", time.Since(start))
	return MaxStepsMessage, nil
}

// complete requests the model's next message for the developer instructions,
// the accumulated history, and the latest input as a user turn.
func (r *Runner) complete(ctx context.Context, history []Turn, userInput string) (string, error) {
	messages := make([]Turn, 0, len(history)+2)
	messages = append(messages, Turn{Role: "developer", Content: r.instructions})
	messages = append(messages, history...)
	messages = append(messages, Turn{Role: "user", Content: userInput})

	start := time.Now()
	response, err := r.provider.Complete(ctx, LLMRequest{
		Model:     r.model,
		Messages:  messages,
		MaxTokens: r.maxTokens,
	})
	observability.RecordModelCall(r.provider.Provider(), time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// failureMessage is the corrective prompt for a tool call that could not be
// completed, naming the tool, the error kind, and the detail.
func failureMessage(tool string, err error) string {
	return fmt.Sprintf(
		"Tool call failed for '%s' with error: %s: %v\nEither try a different tool or produce a Final answer.",
		tool, errorKind(err), err,
	)
}

// errorKind names an error for corrective prompts and metrics labels.
func errorKind(err error) string {
	var kinder interface{ Kind() string }
	if errors.As(err, &kinder) {
		return kinder.Kind()
	}
	switch {
	case errors.Is(err, ErrEmptyOutput):
		return "EmptyOutputError"
	case errors.Is(err, ErrActionParse):
		return "ActionParseError"
	case errors.Is(err, ErrFormat):
		return "FormatError"
	}
	return "Error"
}
