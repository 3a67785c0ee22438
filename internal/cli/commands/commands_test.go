package commands

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmlviewls/internal/cli/config"
	intconfig "github.com/leapstack-labs/xmlviewls/internal/config"
)

// loadProjectConfig loads the xmlviewls.yaml of a test project as the
// current configuration.
func loadProjectConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cfg, err := config.LoadConfig(filepath.Join(root, intconfig.ConfigFileName), nil)
	require.NoError(t, err)
	return cfg
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check [path]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"format", "disable", "severity"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewDescribeCommand(t *testing.T) {
	cmd := NewDescribeCommand()

	assert.Equal(t, "describe <class>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("members"))
	assert.Error(t, cmd.Args(cmd, nil), "a class name is required")
}

func TestNewCacheCommand(t *testing.T) {
	cmd := NewCacheCommand()

	assert.Equal(t, "cache", cmd.Use)
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "purge", "warm"}, names)
}

func TestNewLSPCommand(t *testing.T) {
	cmd := NewLSPCommand("test")

	assert.Equal(t, "lsp", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Long, "Long should not be empty")
}

func TestGetConfig_Fallback(t *testing.T) {
	config.ResetConfig()
	t.Setenv("XMLVIEWLS_MODEL_DIR", "/tmp/models")
	t.Setenv("XMLVIEWLS_OUTPUT", "json")

	cfg := getConfig()
	assert.Equal(t, "/tmp/models", cfg.ModelDir)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, intconfig.DefaultFramework, cfg.DefaultFramework)
	assert.Equal(t, intconfig.DefaultLogLevel, cfg.LogLevel)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2*1024*1024))
}
