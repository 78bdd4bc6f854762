// Package agent implements the single-agent reason-act-observe loop.
//
// Invariants:
// - The tool registry is frozen before the first model call; instructions
//   reference only tools known at that moment.
// - Conversation history is append-only and owned by the current run.
// - A tool invocation is never dispatched for a name absent from the
//   registry; the loop diverts such actions to a corrective prompt.
// - The loop performs at most MaxSteps iterations.
//
// Usage:
//
//	runner, _ := agent.NewRunner(agent.Config{
//		Provider: provider,
//		Invoker:  client,
//		Registry: registry,
//		Model:    "gpt-4o",
//	})
//	answer, _ := runner.Run(ctx, "schedule a meeting for tomorrow")
//	_ = answer
package agent
