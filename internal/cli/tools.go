package cli

import (
	"fmt"
	"strings"

	"github.com/reagent-ai/reagent/internal/config"
	"github.com/reagent-ai/reagent/pkg/mcpclient"
	"github.com/spf13/cobra"
)

var toolsServer string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools advertised by the MCP server",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().StringVar(&toolsServer, "mcp-server", "", "tool server command, split on whitespace (overrides config)")
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("mcp-server") {
		fields := strings.Fields(toolsServer)
		if len(fields) == 0 {
			return fmt.Errorf("mcp server command cannot be empty")
		}
		cfg.MCP.Command = fields[0]
		cfg.MCP.Args = fields[1:]
	}
	if cfg.MCP.Command == "" {
		return fmt.Errorf("mcp server command is required (--mcp-server or config)")
	}

	ctx := cmd.Context()
	client, err := mcpclient.Dial(ctx, cfg.MCP.Command, cfg.MCP.Args)
	if err != nil {
		return fmt.Errorf("failed to connect to mcp server: %w", err)
	}
	defer client.Close()

	descriptors, err := client.Discover(ctx)
	if err != nil {
		return err
	}

	if len(descriptors) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no tools available)")
		return nil
	}
	for _, d := range descriptors {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Name, strings.TrimSpace(d.Description))
	}
	return nil
}
