package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/reagent-ai/reagent/internal/config"
	"github.com/reagent-ai/reagent/internal/logger"
	"github.com/reagent-ai/reagent/internal/observability"
	"github.com/reagent-ai/reagent/pkg/agent"
	"github.com/reagent-ai/reagent/pkg/mcpclient"
	"github.com/reagent-ai/reagent/pkg/toolregistry"
	"github.com/spf13/cobra"
)

var (
	runPrompt      string
	runModel       string
	runServer      string
	runMaxSteps    int
	runMetricsAddr string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a prompt through the agent",
	Long: `Run one prompt through the ReAct loop. The MCP tool server is spawned as a
subprocess for the duration of the run and torn down afterwards. The final
answer (or the step-exhaustion notice) is printed to stdout.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "user prompt to run through the agent (required)")
	runCmd.Flags().StringVar(&runModel, "model", "", "model identifier (overrides config)")
	runCmd.Flags().StringVar(&runServer, "mcp-server", "", "tool server command, split on whitespace (overrides config)")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", 0, "maximum ReAct iterations before stopping (overrides config)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	_ = runCmd.MarkFlagRequired("prompt")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	lg, err := logger.New(logger.Config{
		Level:     logLevel,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer lg.Close()
	zl := lg.GetZerolog()

	if runMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			if err := http.ListenAndServe(runMetricsAddr, mux); err != nil {
				zl.Error().Err(err).Msg("Metrics endpoint failed")
			}
		}()
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// Session setup failures are fatal; everything past the handshake is
	// recovered inside the loop.
	client, err := mcpclient.Dial(ctx, cfg.MCP.Command, cfg.MCP.Args, mcpclient.WithLogger(zl))
	if err != nil {
		return fmt.Errorf("failed to connect to mcp server: %w", err)
	}
	defer client.Close()

	descriptors, err := client.Discover(ctx)
	if err != nil {
		return err
	}

	registry, err := toolregistry.New(descriptors)
	if err != nil {
		return fmt.Errorf("invalid tool listing: %w", err)
	}

	runner, err := agent.NewRunner(agent.Config{
		Provider:  provider,
		Invoker:   client,
		Registry:  registry,
		Logger:    zl,
		Model:     cfg.Model,
		MaxSteps:  cfg.MaxSteps,
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return err
	}

	answer, err := runner.Run(ctx, runPrompt)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

// loadRunConfig loads the config file and applies flag overrides.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("model") {
		cfg.Model = runModel
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = runMaxSteps
	}
	if cmd.Flags().Changed("mcp-server") {
		fields := strings.Fields(runServer)
		if len(fields) == 0 {
			return nil, fmt.Errorf("mcp server command cannot be empty")
		}
		cfg.MCP.Command = fields[0]
		cfg.MCP.Args = fields[1:]
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.MCP.Command == "" {
		return nil, fmt.Errorf("mcp server command is required (--mcp-server or config)")
	}

	return cfg, nil
}

// newProvider builds the LLM provider from config, pulling the API key from
// the provider's conventional environment variable.
func newProvider(cfg *config.Config) (agent.LLMProvider, error) {
	var apiKey string
	switch cfg.Provider {
	case "openai":
		apiKey = os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	factory := &agent.ProviderFactory{}
	return factory.NewProvider(cfg.Provider, apiKey)
}
