package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	t.Run("version flag", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"--version"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		assert.Contains(t, output.String(), "reagent version")
		assert.Contains(t, output.String(), GetVersion())
	})

	t.Run("help flag", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		helpText := output.String()
		assert.Contains(t, helpText, "Reagent")
		assert.Contains(t, helpText, "MCP")
	})

	t.Run("global flags", func(t *testing.T) {
		cmd := GetRootCmd()

		// Check config flag exists
		configFlag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, configFlag)
		assert.Equal(t, "", configFlag.DefValue)

		// Check log-level flag exists
		logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
		require.NotNil(t, logLevelFlag)
		assert.Equal(t, "info", logLevelFlag.DefValue)
	})
}

func TestRunCommandFlags(t *testing.T) {
	cmd := GetRootCmd()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	require.Equal(t, "run", runCmd.Name())

	promptFlag := runCmd.Flags().Lookup("prompt")
	require.NotNil(t, promptFlag)

	for _, name := range []string{"model", "mcp-server", "max-steps", "metrics-addr"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestBlankServerFlagIsAnError(t *testing.T) {
	// A whitespace-only --mcp-server value must surface as a setup error,
	// never crash flag handling.
	t.Run("run command", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"run", "--prompt", "hi", "--mcp-server", "   "})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		var err error
		require.NotPanics(t, func() { err = cmd.Execute() })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mcp server command cannot be empty")
	})

	t.Run("tools command", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"tools", "--mcp-server", ""})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		var err error
		require.NotPanics(t, func() { err = cmd.Execute() })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mcp server command cannot be empty")
	})
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	assert.NotEmpty(t, version)
	assert.True(t, strings.HasPrefix(version, "0."))
}
